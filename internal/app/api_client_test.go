package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestStack wires a client and session store against a fake server, the
// same shape NewApplication produces minus the file logger.
func newTestStack(t *testing.T, handler http.Handler) (*SessionStore, *APIClient, *TokenFile) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	api := NewAPIClient(srv.URL, 5*time.Second, log)
	file := NewTokenFile(t.TempDir())
	store := NewSessionStore(file, api, log)
	api.BindSession(store)
	store.Initialize()
	return store, api, file
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDo_OmitsBearerWhenLoggedOut(t *testing.T) {
	var gotAuth string
	_, api, _ := newTestStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []DocumentRecord{})
	}))

	_, err := api.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDo_AttachesRequestID(t *testing.T) {
	var gotID string
	_, api, _ := newTestStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, []DocumentRecord{})
	}))

	_, err := api.ListDocuments(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(gotID)
	assert.NoError(t, err, "X-Request-ID should be a uuid, got %q", gotID)
}

func TestDo_MalformedSuccessPayloadIsServerError(t *testing.T) {
	_, api, _ := newTestStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))

	_, err := api.ListDocuments(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "expected *APIError, got %v", err)
	assert.Equal(t, ErrServer, apiErr.Kind)
}

func TestDo_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	api := NewAPIClient(srv.URL, time.Second, zap.NewNop())
	_, err := api.ListDocuments(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNetwork, apiErr.Kind)
}

func TestDo_ParsesDetailErrorBody(t *testing.T) {
	_, api, _ := newTestStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "elasticsearch is down"})
	}))

	_, err := api.ListDocuments(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrServer, apiErr.Kind)
	assert.Equal(t, "elasticsearch is down", apiErr.Message)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthRejected},
		{"bad request", http.StatusBadRequest, ErrConflict},
		{"conflict", http.StatusConflict, ErrConflict},
		{"too large", http.StatusRequestEntityTooLarge, ErrValidation},
		{"unsupported media", http.StatusUnsupportedMediaType, ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, ErrValidation},
		{"not found", http.StatusNotFound, ErrServer},
		{"internal", http.StatusInternalServerError, ErrServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyStatus(tc.status))
		})
	}
}

func TestHealth(t *testing.T) {
	_, api, _ := newTestStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	require.NoError(t, api.Health(context.Background()))
}
