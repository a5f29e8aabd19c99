package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

var (
	ErrDuplicateContact   = apperr.Conflict("Email or Phone already registered")
	ErrInvalidCredentials = apperr.Auth("Invalid credentials")
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrVendorNotFound     = apperr.NotFound("Vendor not found")
	ErrInvalidProfile     = apperr.Validation("income and savings goal must be non-negative and risk tolerance one of low, medium, high")
)

// Service manages the user and vendor account lifecycle.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RegisterUser creates a user and stores a bcrypt hash of the password.
func (s *Service) RegisterUser(ctx context.Context, in UserRegistration) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// AuthenticateUser resolves identifier as email, phone or username and verifies the password.
func (s *Service) AuthenticateUser(ctx context.Context, identifier, password string) (User, error) {
	user, err := s.repo.FindUserByIdentifier(ctx, normalizeIdentifier(identifier))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.FindUser(ctx, id)
}

// UpdateProfile sets the user's income, savings goal and risk tolerance.
func (s *Service) UpdateProfile(ctx context.Context, id string, profile Profile) (User, error) {
	if profile.Income.IsNegative() || profile.SavingsGoal.IsNegative() {
		return User{}, ErrInvalidProfile
	}
	switch profile.RiskTolerance {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return User{}, ErrInvalidProfile
	}
	profile.Income = profile.Income.Round(2)
	profile.SavingsGoal = profile.SavingsGoal.Round(2)
	return s.repo.UpdateProfile(ctx, id, profile)
}

// UserIDs lists every registered user id.
func (s *Service) UserIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListUserIDs(ctx)
}

// RegisterVendor creates a vendor account.
func (s *Service) RegisterVendor(ctx context.Context, in VendorRegistration) (Vendor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Vendor{}, err
	}
	vendor := Vendor{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		BusinessName: strings.TrimSpace(in.BusinessName),
		Category:     in.Category,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateVendor(ctx, vendor); err != nil {
		return Vendor{}, err
	}
	return vendor, nil
}

// AuthenticateVendor resolves identifier as business name, email or phone and verifies the password.
func (s *Service) AuthenticateVendor(ctx context.Context, identifier, password string) (Vendor, error) {
	vendor, err := s.repo.FindVendorByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Vendor{}, ErrInvalidCredentials
		}
		return Vendor{}, err
	}
	if err := bcrypt.CompareHashAndPassword(vendor.PasswordHash, []byte(password)); err != nil {
		return Vendor{}, ErrInvalidCredentials
	}
	return vendor, nil
}

// GetVendor returns the vendor with the given id.
func (s *Service) GetVendor(ctx context.Context, id string) (Vendor, error) {
	return s.repo.FindVendor(ctx, id)
}

// FinancialProfile returns income and savings goal, treating unset values as zero.
func (u User) FinancialProfile() (income, savingsGoal decimal.Decimal) {
	if u.Income.Valid {
		income = u.Income.Decimal
	}
	if u.SavingsGoal.Valid {
		savingsGoal = u.SavingsGoal.Decimal
	}
	return income, savingsGoal
}

func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}
