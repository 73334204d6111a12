package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestDoForwardsBearerAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, testLogger())
	q := url.Values{"page": {"2"}}
	status, body, err := c.Do(context.Background(), http.MethodGet, "/api/things", "tok-123", q, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "page=2", gotQuery)
	assert.Empty(t, gotContentType)
}

func TestDoSerializesPayload(t *testing.T) {
	var gotBody string
	var gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, testLogger())
	status, _, err := c.Do(context.Background(), http.MethodPost, "/api/things", "", nil, map[string]string{"name": "x"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"name":"x"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDoHTTPErrorIsNotATransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expirado"}`))
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, testLogger())
	status, body, err := c.Do(context.Background(), http.MethodGet, "/api/things", "tok", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token expirado", MessageFrom(body, "fallback"))
}

func TestDoConnectionRefused(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	c := NewClient(upstream.URL, testLogger())
	_, _, err := c.Do(context.Background(), http.MethodGet, "/api/things", "tok", nil, nil)

	assert.Error(t, err)
}

func TestMessageFromFallback(t *testing.T) {
	assert.Equal(t, "fallback", MessageFrom([]byte(`{}`), "fallback"))
	assert.Equal(t, "fallback", MessageFrom([]byte(`not json`), "fallback"))
	assert.Equal(t, "fallback", MessageFrom([]byte(`{"message":""}`), "fallback"))
	assert.Equal(t, "boom", MessageFrom([]byte(`{"message":"boom"}`), "fallback"))
}
