package session

import (
	"context"
	"errors"

	"github.com/euronode/euronode/internal/client/models"
)

// Provider is the session holder handed to every screen.
type Provider struct {
	store Store
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Get returns the stored session or ErrNoSession.
func (p *Provider) Get(ctx context.Context) (models.Session, error) {
	return p.store.Load(ctx)
}

func (p *Provider) Set(ctx context.Context, s models.Session) error {
	return p.store.Save(ctx, s)
}

func (p *Provider) Clear(ctx context.Context) error {
	return p.store.Clear(ctx)
}

// Require is Get with absence reported as ErrLoginRequired.
func (p *Provider) Require(ctx context.Context) (models.Session, error) {
	s, err := p.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return models.Session{}, ErrLoginRequired
	}
	return s, err
}
