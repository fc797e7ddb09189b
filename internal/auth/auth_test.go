package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/timesince/internal/store"
)

func newTestProvider(t *testing.T) (*Provider, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "timesince.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokenPath := filepath.Join(dir, "session")
	p := NewProvider(st, tokenPath, Options{Cost: bcrypt.MinCost, SessionTTL: time.Hour})
	return p, st, tokenPath
}

func TestSignUpStartsSessionAndNotifies(t *testing.T) {
	p, _, tokenPath := newTestProvider(t)
	ctx := context.Background()

	var seen []*Identity
	cancel := p.Subscribe(func(id *Identity) { seen = append(seen, id) })
	defer cancel()

	id, err := p.SignUp(ctx, "  Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.NotEmpty(t, id.UserID)

	require.Len(t, seen, 1)
	assert.Equal(t, id, seen[0])

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.NotEmpty(t, string(data))
}

func TestSignUpValidation(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = p.SignUp(ctx, "ada@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "ADA@example.com", "another1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInChecksPassword(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	created, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "bob@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, got.UserID)
}

func TestSessionSurvivesRestart(t *testing.T) {
	p, st, tokenPath := newTestProvider(t)
	ctx := context.Background()

	none, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	created, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	restarted := NewProvider(st, tokenPath, Options{Cost: bcrypt.MinCost})
	got, err := restarted.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestSessionDiscardsExpiredToken(t *testing.T) {
	p, _, tokenPath := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err), "token file should be removed")
}

func TestSessionDiscardsUnknownToken(t *testing.T) {
	p, _, tokenPath := newTestProvider(t)
	require.NoError(t, os.WriteFile(tokenPath, []byte("bogus\n"), 0o600))

	got, err := p.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSignOutNotifiesNilAndForgetsSession(t *testing.T) {
	p, st, tokenPath := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	var last *Identity
	calls := 0
	cancel := p.Subscribe(func(id *Identity) {
		calls++
		last = id
	})

	require.NoError(t, p.SignOut(ctx))
	assert.Equal(t, 1, calls)
	assert.Nil(t, last)

	restarted := NewProvider(st, tokenPath, Options{})
	got, err := restarted.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	cancel()
	cancel()
	_, err = p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "unsubscribed listener must not fire")
}
