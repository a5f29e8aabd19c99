package classifier

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Feature positions in the vector handed to a Predictor.
const (
	FeatureMerchantName = iota
	FeatureMerchantCategory
	FeatureAmount
	FeatureIsRecurring
	FeatureBalanceBefore
	FeatureHour
	FeatureDayOfWeek
	featureCount
)

//go:embed models/default.json
var defaultModel embed.FS

// LabelEncoder maps category strings to the integer codes the model was
// trained on. Codes follow sorted vocabulary order; unseen labels encode to 0.
type LabelEncoder struct {
	index map[string]int
}

// NewLabelEncoder builds an encoder over vocabulary.
func NewLabelEncoder(vocabulary []string) LabelEncoder {
	sorted := append([]string(nil), vocabulary...)
	sort.Strings(sorted)
	index := make(map[string]int, len(sorted))
	for i, label := range sorted {
		index[label] = i
	}
	return LabelEncoder{index: index}
}

// Encode returns the code for label, or 0 when the label was never seen.
func (e LabelEncoder) Encode(label string) int {
	if code, ok := e.index[label]; ok {
		return code
	}
	return 0
}

// Known reports whether label is part of the vocabulary.
func (e LabelEncoder) Known(label string) bool {
	_, ok := e.index[label]
	return ok
}

type node struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Labels    []string `json:"labels,omitempty"`
	Leaf      *int     `json:"leaf,omitempty"`
	Left      *node    `json:"left,omitempty"`
	Right     *node    `json:"right,omitempty"`

	codes map[float64]struct{}
}

type modelFile struct {
	Version            string   `json:"version"`
	MerchantVocabulary []string `json:"merchant_vocabulary"`
	CategoryVocabulary []string `json:"category_vocabulary"`
	Tree               *node    `json:"tree"`
}

// Model is a decision tree over the engineered expense features together with
// the label encoders for the categorical inputs.
type Model struct {
	Version    string
	Merchants  LabelEncoder
	Categories LabelEncoder
	root       *node
}

// LoadModel reads a model file from path.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier model: %w", err)
	}
	return ParseModel(raw)
}

// DefaultModel returns the rule-based model bundled with the binary.
func DefaultModel() (*Model, error) {
	raw, err := defaultModel.ReadFile("models/default.json")
	if err != nil {
		return nil, err
	}
	return ParseModel(raw)
}

// ParseModel decodes and compiles a JSON model.
func ParseModel(raw []byte) (*Model, error) {
	var file modelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode classifier model: %w", err)
	}
	if file.Tree == nil {
		return nil, fmt.Errorf("classifier model has no tree")
	}
	m := &Model{
		Version:    file.Version,
		Merchants:  NewLabelEncoder(file.MerchantVocabulary),
		Categories: NewLabelEncoder(file.CategoryVocabulary),
		root:       file.Tree,
	}
	if err := m.compile(file.Tree); err != nil {
		return nil, err
	}
	return m, nil
}

// compile validates the tree and resolves label splits to encoded values.
func (m *Model) compile(n *node) error {
	if n.Leaf != nil {
		if *n.Leaf < 0 || *n.Leaf > 2 {
			return fmt.Errorf("leaf class %d out of range", *n.Leaf)
		}
		return nil
	}
	if n.Feature < 0 || n.Feature >= featureCount {
		return fmt.Errorf("split on unknown feature %d", n.Feature)
	}
	if n.Left == nil || n.Right == nil {
		return fmt.Errorf("split on feature %d is missing a branch", n.Feature)
	}
	if len(n.Labels) > 0 {
		var enc LabelEncoder
		switch n.Feature {
		case FeatureMerchantName:
			enc = m.Merchants
		case FeatureMerchantCategory:
			enc = m.Categories
		default:
			return fmt.Errorf("label split on numeric feature %d", n.Feature)
		}
		n.codes = make(map[float64]struct{}, len(n.Labels))
		for _, label := range n.Labels {
			if !enc.Known(label) {
				return fmt.Errorf("label %q not in vocabulary", label)
			}
			n.codes[float64(enc.Encode(label))] = struct{}{}
		}
	}
	if err := m.compile(n.Left); err != nil {
		return err
	}
	return m.compile(n.Right)
}

// Predict walks the tree for features and returns the class code.
func (m *Model) Predict(features []float64) (int, error) {
	if len(features) != featureCount {
		return 0, fmt.Errorf("expected %d features, got %d", featureCount, len(features))
	}
	n := m.root
	for n.Leaf == nil {
		x := features[n.Feature]
		var left bool
		if n.codes != nil {
			_, left = n.codes[x]
		} else {
			left = x <= n.Threshold
		}
		if left {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return *n.Leaf, nil
}
