package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_ValidToken(t *testing.T) {
	handler := BearerAuth("secret-token")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	handler := BearerAuth("secret-token")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	handler := BearerAuth("secret-token")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	req.Header.Set("Authorization", "Basic secret-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	handler := BearerAuth("secret-token")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	req.Header.Set("Authorization", "Bearer other-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_EmptyTokenDisablesAuth(t *testing.T) {
	handler := BearerAuth("")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
