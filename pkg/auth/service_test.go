package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockJWKSClient returns canned claims without real validation.
type mockJWKSClient struct {
	claims   *Claims
	err      error
	gotToken string
}

func (m *mockJWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	m.gotToken = tokenString
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func (m *mockJWKSClient) Close() {}

func testClaims(sub string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		Email:            "amina@example.com",
	}
}

func TestValidateRequest_CookieFirst(t *testing.T) {
	mock := &mockJWKSClient{claims: testClaims("123e4567-e89b-12d3-a456-426614174000")}
	svc := NewAuthService(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	claims, token, err := svc.ValidateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", token, "cookie wins over the Authorization header")
	assert.Equal(t, "cookie-token", mock.gotToken)
	assert.Equal(t, "amina@example.com", claims.Email)
}

func TestValidateRequest_BearerFallback(t *testing.T) {
	mock := &mockJWKSClient{claims: testClaims("123e4567-e89b-12d3-a456-426614174000")}
	svc := NewAuthService(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	_, token, err := svc.ValidateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "header-token", token)
}

func TestValidateRequest_MissingAndMalformed(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{claims: testClaims("x")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	_, _, err := svc.ValidateRequest(req)
	assert.ErrorIs(t, err, ErrMissingAuthorization)

	req = httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	req.Header.Set("Authorization", "Token abc")
	_, _, err = svc.ValidateRequest(req)
	assert.ErrorIs(t, err, ErrInvalidAuthFormat)
}

func TestFarmerIDFromContext(t *testing.T) {
	mock := &mockJWKSClient{claims: testClaims("123e4567-e89b-12d3-a456-426614174000")}
	middleware := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

	var gotFarmer string
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, err := FarmerIDFromContext(r.Context())
		require.NoError(t, err)
		gotFarmer = id.String()
	})

	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", gotFarmer)
}

func TestRequireAuth_RejectsNonUUIDSubject(t *testing.T) {
	mock := &mockJWKSClient{claims: testClaims("not-a-uuid")}
	middleware := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

	called := false
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/crops", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
