// Package storefront talks to the commerce platform hosting the
// merchant's shop. Shops are identified by their platform domain
// (the shop key); API access requires a per-shop session token.
package storefront

import (
	"context"

	"github.com/dukerupert/tawseel/internal/domain"
)

// StoreProfile is the merchant-facing shop record. Its address fields
// feed pickup location resolution.
type StoreProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

// HasAddress reports whether the shop has any usable address data.
func (p *StoreProfile) HasAddress() bool {
	return p.Address1 != "" || p.Address2 != "" || p.City != "" || p.Zip != ""
}

// OrderListOptions narrows a ListOrders call. Zero values mean the
// platform defaults: any status, the platform's page size, no cursor.
type OrderListOptions struct {
	Status  string
	Limit   int
	SinceID int64
}

// Client fetches shop and order data from the commerce platform.
type Client interface {
	GetStoreProfile(ctx context.Context, shopKey string) (*StoreProfile, error)
	GetOrder(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error)
	ListOrders(ctx context.Context, shopKey string, opts OrderListOptions) ([]*domain.SourceOrder, error)
}

// Session holds the API credentials for one shop.
type Session struct {
	Shop        string
	AccessToken string
	Scope       string
}

// SessionStore resolves the API session for a shop key.
type SessionStore interface {
	GetSession(ctx context.Context, shopKey string) (*Session, error)
	DeleteSession(ctx context.Context, shopKey string) error
}

// StaticSessions is a SessionStore backed by a fixed shop -> token map,
// for deployments where tokens are provisioned through configuration.
type StaticSessions struct {
	tokens map[string]string
}

// NewStaticSessions creates a session store from a shop -> token map.
func NewStaticSessions(tokens map[string]string) *StaticSessions {
	if tokens == nil {
		tokens = make(map[string]string)
	}
	return &StaticSessions{tokens: tokens}
}

var _ SessionStore = (*StaticSessions)(nil)

func (s *StaticSessions) GetSession(ctx context.Context, shopKey string) (*Session, error) {
	token, ok := s.tokens[shopKey]
	if !ok {
		return nil, domain.NotFound("storefront.get_session", "session", shopKey)
	}
	return &Session{Shop: shopKey, AccessToken: token}, nil
}

func (s *StaticSessions) DeleteSession(ctx context.Context, shopKey string) error {
	delete(s.tokens, shopKey)
	return nil
}
