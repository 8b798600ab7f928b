package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "password123",
		Role:     "client",
		ClientID: "client-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "client", u.Role)
	require.NotEqual(t, "password123", u.PasswordHash)
	require.NotNil(t, u.ClientID)
	require.Equal(t, "client-1", *u.ClientID)

	got, err := svc.Login(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, "a@x.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmailKeepsOriginal(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123", Role: "client", ClientID: "client-1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@X.com", Password: "password456", Role: "client", ClientID: "client-2"})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Original record unchanged: original credentials still log in.
	got, err := svc.Login(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, "A", got.Name)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	cases := []RegisterRequest{
		// no name
		{Email: "a@x.com", Password: "password123", Role: "client", ClientID: "c1"},
		// no email
		{Name: "A", Password: "password123", Role: "client", ClientID: "c1"},
		// malformed email
		{Name: "A", Email: "not-an-email", Password: "password123", Role: "client", ClientID: "c1"},
		// short password
		{Name: "A", Email: "a@x.com", Password: "short", Role: "client", ClientID: "c1"},
		// unknown role
		{Name: "A", Email: "a@x.com", Password: "password123", Role: "owner"},
		// client role without a tenant
		{Name: "A", Email: "a@x.com", Password: "password123", Role: "client"},
		// admin role with a tenant
		{Name: "A", Email: "a@x.com", Password: "password123", Role: "admin", ClientID: "c1"},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, ErrInvalidArgument, "payload %+v", req)
	}
}

func TestLoginUnknownEmailIsInvalidCredentials(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Login(context.Background(), "nobody@x.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123", Role: "admin"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "newpassword1"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "password123", "newpassword1"))

	_, err = svc.Login(ctx, "a@x.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "newpassword1")
	require.NoError(t, err)
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123", Role: "client", ClientID: "client-1"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, u.ID, false))

	_, err = svc.Login(ctx, "a@x.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
