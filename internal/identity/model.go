package identity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Risk tolerance values accepted on a user profile.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// MerchantCategories lists the vendor categories a business can register under.
var MerchantCategories = []string{
	"Utilities", "Groceries", "Dining", "Entertainment", "Subscriptions",
	"Mortgage", "Insurance", "Commuting", "Healthcare", "Shopping",
	"Education", "Travel", "Fuel", "Personal_Care", "Financial", "Miscellaneous",
}

// User represents a registered individual wallet owner.
type User struct {
	ID            string
	Username      string
	Email         string
	Phone         string
	PasswordHash  []byte
	Income        decimal.NullDecimal
	SavingsGoal   decimal.NullDecimal
	RiskTolerance string
	CreatedAt     time.Time
}

// Vendor represents a merchant that receives scan & pay payments.
type Vendor struct {
	ID           string
	Username     string
	BusinessName string
	Category     string
	Email        string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// UserRegistration carries the fields needed to create a user.
type UserRegistration struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// VendorRegistration carries the fields needed to create a vendor.
type VendorRegistration struct {
	Username     string
	BusinessName string
	Category     string
	Email        string
	Phone        string
	Password     string
}

// Profile holds the financial settings a user can update.
type Profile struct {
	Income        decimal.Decimal
	SavingsGoal   decimal.Decimal
	RiskTolerance string
}
