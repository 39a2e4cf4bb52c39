package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/config"
)

func newClient(t *testing.T, base string) *backend.Client {
	t.Helper()
	return backend.NewClient(&config.Config{APIBase: base, HTTPTimeoutSeconds: 2}, zerolog.Nop())
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"PhoneCodeInvalid"}`, "PhoneCodeInvalid"},
		{"server error detail", http.StatusInternalServerError, `{"detail":"Userbot not initialized"}`, "Userbot not initialized"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","code"],"msg":"field required"}]}`, `[{"loc":["body","code"],"msg":"field required"}]`},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, "Bad Request"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"unknown status", 499, ``, "HTTP 499"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := newClient(t, srv.URL).SignIn(context.Background(), "1", "h")
			require.Error(t, err)

			var apiErr *backend.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)

			detail, ok := backend.Detail(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantDetail, detail)
			assert.False(t, backend.IsNetwork(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	err := newClient(t, base).SignInWithPassword(context.Background(), "secret")
	require.Error(t, err)
	assert.True(t, backend.IsNetwork(err))
	assert.True(t, errors.Is(err, backend.ErrNetwork))

	_, ok := backend.Detail(err)
	assert.False(t, ok)
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient(t, srv.URL).SendCode(ctx, backend.Credentials{Phone: "+1"})
	require.Error(t, err)
	assert.True(t, backend.IsNetwork(err))
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"phone_code_hash":"abc"}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL+"/").SendCode(context.Background(), backend.Credentials{Phone: "+1"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err, "X-Request-ID should be a uuid")
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode GET /userbot/status")
}

func TestClient_HealthIsServedOnAppRoot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("/api/v1/userbot/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"running":false,"message":"Userbot is stopped"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv.URL+"/api/v1")
	_, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.NoError(t, c.Health(context.Background()))
}
