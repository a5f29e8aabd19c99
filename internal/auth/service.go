package auth

import (
	"context"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

// Service authenticates accounts and issues tokens.
type Service struct {
	ids     *identity.Service
	wallets *wallet.Service
	tokens  *TokenService
}

// NewService builds an auth service.
func NewService(ids *identity.Service, wallets *wallet.Service, tokens *TokenService) *Service {
	return &Service{ids: ids, wallets: wallets, tokens: tokens}
}

// Session is the result of a successful login.
type Session struct {
	AccountID string
	Role      string
	WalletID  string
	Tokens    TokenPair
}

// LoginUser authenticates a user by email, phone or username.
func (s *Service) LoginUser(ctx context.Context, identifier, password string) (Session, error) {
	user, err := s.ids.AuthenticateUser(ctx, identifier, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(ctx, user.ID, RoleUser, ledger.OwnerUser)
}

// LoginVendor authenticates a vendor by business name, email or phone.
func (s *Service) LoginVendor(ctx context.Context, identifier, password string) (Session, error) {
	vendor, err := s.ids.AuthenticateVendor(ctx, identifier, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(ctx, vendor.ID, RoleVendor, ledger.OwnerVendor)
}

// Refresh issues a new access token from a refresh token.
func (s *Service) Refresh(refreshToken string) (string, int64, error) {
	return s.tokens.Refresh(refreshToken)
}

func (s *Service) session(ctx context.Context, id, role, ownerType string) (Session, error) {
	pair, err := s.tokens.IssuePair(id, role)
	if err != nil {
		return Session{}, err
	}
	out := Session{AccountID: id, Role: role, Tokens: pair}
	if w, err := s.wallets.GetByOwner(ctx, ownerType, id); err == nil {
		out.WalletID = w.WalletID
	}
	return out, nil
}
