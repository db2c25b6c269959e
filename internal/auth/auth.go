// Package auth resolves the identity of the person filling in an
// application. Authentication itself happens at an external identity
// provider; this package only holds the resulting opaque session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

// ErrNoToken is returned when no token has been configured.
var ErrNoToken = errors.New("auth: no token configured")

// Session is the identity of the current user.
type Session struct {
	Authenticated bool
	DisplayName   string
	Organization  string
}

// UserAPI fetches the user a token belongs to. *backend.Client satisfies it.
type UserAPI interface {
	CurrentUser(ctx context.Context) (backend.Record, error)
}

// Provider derives a Session from the configured token.
type Provider struct {
	token  string
	api    UserAPI
	logger *log.Logger
}

// NewProvider creates a provider. api may be nil, in which case any non-empty
// token counts as authenticated without asking the backend.
func NewProvider(token string, api UserAPI) *Provider {
	return &Provider{
		token:  strings.TrimSpace(token),
		api:    api,
		logger: logging.New("auth"),
	}
}

// Session resolves the current session. An expired or rejected token yields
// an unauthenticated session and no error; transport failures are errors.
func (p *Provider) Session(ctx context.Context) (Session, error) {
	if p.token == "" {
		return Session{}, ErrNoToken
	}
	if p.api == nil {
		return Session{Authenticated: true}, nil
	}

	rec, err := p.api.CurrentUser(ctx)
	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		p.logger.Debug("token rejected by backend")
		return Session{}, nil
	case err != nil:
		return Session{}, fmt.Errorf("auth: resolve session: %w", err)
	}

	s := Session{Authenticated: true}
	s.DisplayName = displayName(rec)
	if org, ok := rec["organization_name"].(string); ok {
		s.Organization = org
	}
	p.logger.Debug("session resolved", "name", s.DisplayName)
	return s, nil
}

func displayName(rec backend.Record) string {
	if name, ok := rec["name"].(string); ok && name != "" {
		return name
	}
	first, _ := rec["first_name"].(string)
	last, _ := rec["last_name"].(string)
	return strings.TrimSpace(first + " " + last)
}
