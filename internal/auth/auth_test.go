package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
)

type fakeUsers struct {
	rec   backend.Record
	err   error
	calls int
}

func (f *fakeUsers) CurrentUser(context.Context) (backend.Record, error) {
	f.calls++
	return f.rec, f.err
}

func TestSession_NoToken(t *testing.T) {
	api := &fakeUsers{}
	_, err := NewProvider("  ", api).Session(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Zero(t, api.calls)
}

func TestSession_WithoutBackend(t *testing.T) {
	s, err := NewProvider("tok", nil).Session(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
	assert.Empty(t, s.DisplayName)
}

func TestSession_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		rec  backend.Record
		want string
	}{
		{"full name", backend.Record{"name": "Maija Meikäläinen"}, "Maija Meikäläinen"},
		{"split name", backend.Record{"first_name": "Matti", "last_name": "Virtanen"}, "Matti Virtanen"},
		{"none", backend.Record{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewProvider("tok", &fakeUsers{rec: tt.rec}).Session(context.Background())
			require.NoError(t, err)
			assert.True(t, s.Authenticated)
			assert.Equal(t, tt.want, s.DisplayName)
		})
	}
}

func TestSession_Rejected(t *testing.T) {
	api := &fakeUsers{err: fmt.Errorf("GET /v1/users/me/: %w", backend.ErrUnauthenticated)}
	s, err := NewProvider("expired", api).Session(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Authenticated)
}

func TestSession_TransportError(t *testing.T) {
	api := &fakeUsers{err: errors.New("connection refused")}
	_, err := NewProvider("tok", api).Session(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
