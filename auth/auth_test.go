package auth

import (
	"chat-signal/errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_Roundtrip(t *testing.T) {
	req := require.New(t)
	a := NewAuthenticator("a-long-enough-secret")

	token, err := a.GenerateToken("alice", time.Minute)
	req.NoError(err)

	claims, err := a.ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
}

func TestAuthenticator_Rejects_Bad_Tokens(t *testing.T) {
	req := require.New(t)
	a := NewAuthenticator("a-long-enough-secret")

	expired, err := a.GenerateToken("alice", -time.Minute)
	req.NoError(err)
	foreign, err := NewAuthenticator("someone-else").GenerateToken("alice", time.Minute)
	req.NoError(err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)

	for name, token := range map[string]string{"expired": expired, "foreign": foreign, "none": unsigned, "garbage": "x.y.z"} {
		_, err := a.ValidateToken(token)
		req.ErrorIs(err, errors.ErrUnauthenticated, name)
	}
}

func TestAuthenticator_Authenticate_Request(t *testing.T) {
	req := require.New(t)
	a := NewAuthenticator("a-long-enough-secret")
	token, err := a.GenerateToken("bob", time.Minute)
	req.NoError(err)

	// Given a bearer header
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	userID, err := a.Authenticate(r)
	req.NoError(err)
	req.Equal("bob", userID)

	// Given a query parameter
	userID, err = a.Authenticate(httptest.NewRequest("GET", "/ws?token="+token, nil))
	req.NoError(err)
	req.Equal("bob", userID)

	// Given nothing
	_, err = a.Authenticate(httptest.NewRequest("GET", "/ws", nil))
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestAuthenticator_Disabled_Accepts_Anonymous(t *testing.T) {
	req := require.New(t)
	userID, err := NewAuthenticator("").Authenticate(httptest.NewRequest("GET", "/ws", nil))
	req.NoError(err)
	req.Empty(userID)
}
