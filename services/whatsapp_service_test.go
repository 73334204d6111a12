package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusParsesCredential(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/whatsapp/status", r.URL.Path)
		w.Write([]byte(`{"hasToken":true,"token":"inst-1"}`))
	}))
	defer upstream.Close()
	svc := NewWhatsappService(NewClient(upstream.URL, testLogger()), "http://provider.invalid", testLogger())

	result := svc.Status(context.Background(), "tok")

	require.True(t, result.Success)
	assert.True(t, result.HasToken)
	assert.Equal(t, "inst-1", result.Token)
}

func TestConnectionRejectsEnvelopeFailure(t *testing.T) {
	// 200 with success:false is still a failure; the backend wraps provider
	// errors that way.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Instância ocupada"}`))
	}))
	defer upstream.Close()
	svc := NewWhatsappService(NewClient(upstream.URL, testLogger()), "http://provider.invalid", testLogger())

	result := svc.Initiate(context.Background(), "tok")

	assert.False(t, result.Success)
	assert.Equal(t, "Instância ocupada", result.Message)
}

func TestConnectReturnsQRPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/whatsapp/connect", r.URL.Path)
		w.Write([]byte(`{"success":true,"token":"inst-1","qrCode":"qr-payload"}`))
	}))
	defer upstream.Close()
	svc := NewWhatsappService(NewClient(upstream.URL, testLogger()), "http://provider.invalid", testLogger())

	result := svc.Connect(context.Background(), "tok")

	require.True(t, result.Success)
	assert.Equal(t, "inst-1", result.Token)
	assert.Equal(t, "qr-payload", result.QRCode)
}

func TestDisconnectInstanceAlwaysSucceeds(t *testing.T) {
	var providerHit bool
	var gotInstanceHeader string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerHit = true
		gotInstanceHeader = r.Header.Get("token")
		assert.Equal(t, "/instance/disconnect", r.URL.Path)
		// Provider failing must not change the outcome.
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hasToken":false}`))
	}))
	defer upstream.Close()
	svc := NewWhatsappService(NewClient(upstream.URL, testLogger()), provider.URL, testLogger())

	result := svc.DisconnectInstance(context.Background(), "tok", "inst-1")

	assert.True(t, result.Success)
	assert.True(t, providerHit)
	assert.Equal(t, "inst-1", gotInstanceHeader)
}

func TestDisconnectInstanceUnreachableProvider(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hasToken":false}`))
	}))
	defer upstream.Close()
	svc := NewWhatsappService(NewClient(upstream.URL, testLogger()), "http://127.0.0.1:1", testLogger())

	result := svc.DisconnectInstance(context.Background(), "tok", "inst-1")

	assert.True(t, result.Success)
}

func TestDisconnectInstanceWithoutCredential(t *testing.T) {
	svc := NewWhatsappService(NewClient("http://127.0.0.1:1", testLogger()), "http://127.0.0.1:1", testLogger())

	result := svc.DisconnectInstance(context.Background(), "tok", "")

	assert.True(t, result.Success)
}
