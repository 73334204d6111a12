package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impulsohub/painel/models"
)

func authServiceFor(t *testing.T, handler http.HandlerFunc) (*AuthService, *httptest.Server) {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)
	return NewAuthService(NewClient(upstream.URL, testLogger()), testLogger()), upstream
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"_id":"u1","name":"Ana","email":"ana@x.com","role":"admin","token":"tok-9"}`))
	})

	result := svc.Login(context.Background(), "ana@x.com", "secret")

	require.True(t, result.Success)
	assert.Equal(t, "tok-9", result.Token)
	assert.Equal(t, models.SessionUser{ID: "u1", Name: "Ana", Email: "ana@x.com", Role: "admin"}, result.User)
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Credenciais inválidas"}`))
	})

	result := svc.Login(context.Background(), "ana@x.com", "wrong")

	assert.False(t, result.Success)
	assert.Equal(t, "Credenciais inválidas", result.Message)
	assert.Empty(t, result.Token)
}

func TestLoginRejectsIncompleteResponse(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Ana"}`))
	})

	result := svc.Login(context.Background(), "ana@x.com", "secret")

	assert.False(t, result.Success)
	assert.Equal(t, "Resposta de login inválida recebida do servidor.", result.Message)
}

func TestLoginTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()
	svc := NewAuthService(NewClient(upstream.URL, testLogger()), testLogger())

	result := svc.Login(context.Background(), "ana@x.com", "secret")

	assert.False(t, result.Success)
	assert.Equal(t, models.MsgConnectionError, result.Message)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not reach the network")
	})

	result := svc.Login(context.Background(), "", "secret")

	assert.False(t, result.Success)
}

func TestRequestPasswordResetNeverLeaksExistence(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		// Backend rejecting an unknown email must still read as success.
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	})

	result := svc.RequestPasswordReset(context.Background(), "nobody@x.com")

	assert.True(t, result.Success)
	assert.Equal(t, resetRequestMessage, result.Message)
}

func TestVerifyResetToken(t *testing.T) {
	svc, _ := authServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "expired", r.URL.Query().Get("token"))
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Token expirado"}`))
	})

	result := svc.VerifyResetToken(context.Background(), "expired")

	assert.False(t, result.Success)
	assert.Equal(t, "Token expirado", result.Message)

	assert.False(t, svc.VerifyResetToken(context.Background(), "").Success)
}
