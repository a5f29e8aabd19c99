package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/validation"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

// Handler exposes registration and profile endpoints.
type Handler struct {
	service   *Service
	wallets   *wallet.Service
	validator *validation.Validator
	logger    *slog.Logger
}

// NewHandler creates a new identity handler and registers the merchant
// category rule on validator.
func NewHandler(service *Service, wallets *wallet.Service, validator *validation.Validator, logger *slog.Logger) *Handler {
	_ = validator.RegisterEnum("merchant_category", MerchantCategories)
	return &Handler{service: service, wallets: wallets, validator: validator, logger: logger}
}

type userRegisterForm struct {
	Username        string `form:"username" validate:"required,min=3"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,len=10,number"`
	Password        string `form:"password" validate:"required,min=8,letters_digits"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	InitialBalance  string `form:"initial_balance" validate:"required,decimal"`
}

// RegisterUser creates a user and opens their wallet.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var form userRegisterForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	balance, err := validation.Amount("initial_balance", form.InitialBalance)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return wallet.ErrNegativeOpeningBal
	}

	user, err := h.service.RegisterUser(c.UserContext(), UserRegistration{
		Username: form.Username,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
	})
	if err != nil {
		return err
	}
	w, err := h.openWallet(c, ledger.OwnerUser, user.ID, balance)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "User Registered Successfully",
		"user_id":   user.ID,
		"wallet_id": w.WalletID,
		"balance":   balance.Round(2).InexactFloat64(),
	})
}

// UserProfile returns the user's profile and wallet.
func (h *Handler) UserProfile(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user_id":        user.ID,
		"username":       user.Username,
		"email":          user.Email,
		"phone":          user.Phone,
		"income":         nullable(user.Income),
		"savings_goal":   nullable(user.SavingsGoal),
		"risk_tolerance": nullString(user.RiskTolerance),
		"wallet":         h.walletView(c, ledger.OwnerUser, user.ID),
	})
}

type profileForm struct {
	MonthlyIncome string `form:"monthly_income" validate:"omitempty,decimal"`
	SavingsGoal   string `form:"savings_goal" validate:"omitempty,decimal"`
	RiskTolerance string `form:"risk_tolerance" validate:"omitempty,oneof=low medium high"`
}

// UpdateProfile sets income, savings goal and risk tolerance.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var form profileForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	income, err := validation.Amount("monthly_income", form.MonthlyIncome)
	if err != nil {
		return err
	}
	goal, err := validation.Amount("savings_goal", form.SavingsGoal)
	if err != nil {
		return err
	}
	risk := strings.ToLower(form.RiskTolerance)
	if risk == "" {
		risk = RiskMedium
	}
	if _, err := h.service.UpdateProfile(c.UserContext(), c.Params("id"), Profile{
		Income:        income,
		SavingsGoal:   goal,
		RiskTolerance: risk,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated"})
}

type vendorRegisterForm struct {
	Username        string `form:"username" validate:"omitempty,min=3"`
	BusinessName    string `form:"business_name" validate:"required,min=3"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,len=10,number"`
	Category        string `form:"category" validate:"required,merchant_category"`
	Password        string `form:"password" validate:"required,min=8,letters_digits"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	InitialBalance  string `form:"initial_balance" validate:"omitempty,decimal"`
}

// RegisterVendor creates a vendor and opens its wallet.
func (h *Handler) RegisterVendor(c *fiber.Ctx) error {
	var form vendorRegisterForm
	if err := c.BodyParser(&form); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := h.validator.Struct(form); err != nil {
		return err
	}
	balance, err := validation.Amount("initial_balance", form.InitialBalance)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return wallet.ErrNegativeOpeningBal
	}
	username := form.Username
	if username == "" {
		username = form.BusinessName
	}

	vendor, err := h.service.RegisterVendor(c.UserContext(), VendorRegistration{
		Username:     username,
		BusinessName: form.BusinessName,
		Category:     form.Category,
		Email:        form.Email,
		Phone:        form.Phone,
		Password:     form.Password,
	})
	if err != nil {
		return err
	}
	w, err := h.openWallet(c, ledger.OwnerVendor, vendor.ID, balance)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "Vendor Registered Successfully",
		"vendor_id": vendor.ID,
		"wallet_id": w.WalletID,
		"balance":   balance.Round(2).InexactFloat64(),
	})
}

// VendorProfile returns the vendor's profile and wallet.
func (h *Handler) VendorProfile(c *fiber.Ctx) error {
	vendor, err := h.service.GetVendor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"vendor_id":     vendor.ID,
		"business_name": vendor.BusinessName,
		"email":         vendor.Email,
		"phone":         vendor.Phone,
		"category":      vendor.Category,
		"wallet":        h.walletView(c, ledger.OwnerVendor, vendor.ID),
	})
}

func (h *Handler) openWallet(c *fiber.Ctx, ownerType, ownerID string, balance decimal.Decimal) (wallet.Wallet, error) {
	w, err := h.wallets.Open(c.UserContext(), wallet.OpenInput{OwnerType: ownerType, OwnerID: ownerID, InitialBalance: balance})
	if err != nil {
		h.logger.Error("account created without wallet",
			slog.String("owner_type", ownerType), slog.String("owner_id", ownerID), slog.Any("error", err))
		return wallet.Wallet{}, err
	}
	return w, nil
}

func (h *Handler) walletView(c *fiber.Ctx, ownerType, ownerID string) fiber.Map {
	b, err := h.wallets.Balance(c.UserContext(), ownerType, ownerID)
	if err != nil {
		return fiber.Map{"wallet_id": nil, "balance": 0.0}
	}
	return fiber.Map{"wallet_id": b.WalletID, "balance": b.Amount.InexactFloat64()}
}

func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
