package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPI_Login_Success(t *testing.T) {
	// Arrange
	payload := LoginRequest{Username: "api_test_user", Password: "password"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	// Act
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	var tokens TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
}

func TestAPI_Login_WrongPassword(t *testing.T) {
	payload := LoginRequest{Username: "api_test_user", Password: "wrong"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_Login_UnknownUser(t *testing.T) {
	payload := LoginRequest{Username: "nobody", Password: "password"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_RefreshToken_Rotates(t *testing.T) {
	// Log in to obtain a refresh token.
	loginBody, _ := json.Marshal(LoginRequest{Username: "api_test_user", Password: "password"})
	loginReq := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginRR := httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(loginRR, loginReq)
	require.Equal(t, http.StatusOK, loginRR.Code)

	var tokens TokenResponse
	require.NoError(t, json.Unmarshal(loginRR.Body.Bytes(), &tokens))

	// Exchange it.
	body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.RefreshTokenHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var rotated TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rotated))
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token was consumed by the rotation.
	replay, _ := json.Marshal(RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	replayReq := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(replay))
	replayRR := httptest.NewRecorder()
	http.HandlerFunc(testServer.RefreshTokenHandler).ServeHTTP(replayRR, replayReq)
	require.Equal(t, http.StatusUnauthorized, replayRR.Code)
}

func TestAPI_RefreshToken_Missing(t *testing.T) {
	body, _ := json.Marshal(RefreshTokenRequest{})
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.RefreshTokenHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_AuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rr := httptest.NewRecorder()

	handler := testServer.AuthMiddleware(http.HandlerFunc(testServer.GetCurrentUserHandler))
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var claims map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &claims))
	require.Equal(t, "api_test_user", claims["username"])
}

func TestAPI_AuthMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()

	handler := testServer.AuthMiddleware(http.HandlerFunc(testServer.GetCurrentUserHandler))
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_AuthMiddleware_MalformedToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	handler := testServer.AuthMiddleware(http.HandlerFunc(testServer.GetCurrentUserHandler))
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
