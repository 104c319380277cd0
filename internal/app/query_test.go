package app

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueryFlow(t *testing.T, handler http.Handler) *QueryFlow {
	t.Helper()
	_, api, _ := newTestStack(t, handler)
	return NewQueryFlow(api, zap.NewNop())
}

func TestSubmit_BlankInputRejectedLocally(t *testing.T) {
	var calls atomic.Int64
	flow := newTestQueryFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"tabs and newlines", "\t\n "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := flow.Submit(context.Background(), tc.question)
			var qErr *QueryError
			require.ErrorAs(t, err, &qErr)
			assert.Equal(t, EmptyQuery, qErr.Reason)
		})
	}
	assert.Equal(t, int64(0), calls.Load())
}

func TestSubmit_SetsAnswer(t *testing.T) {
	flow := newTestQueryFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "what is in a.pdf?", body["query"])
		writeJSON(w, http.StatusOK, map[string]string{"answer": "a summary"})
	}))

	answer, err := flow.Submit(context.Background(), "  what is in a.pdf?  ")
	require.NoError(t, err)
	assert.Equal(t, "a summary", answer)

	exch := flow.Exchange()
	assert.Equal(t, "what is in a.pdf?", exch.Question)
	assert.Equal(t, "a summary", exch.Answer)
	assert.False(t, exch.InFlight)
}

func TestSubmit_FailureClearsPreviousAnswer(t *testing.T) {
	var failing atomic.Bool
	flow := newTestQueryFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "model overloaded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"answer": "first answer"})
	}))

	_, err := flow.Submit(context.Background(), "first question")
	require.NoError(t, err)
	require.Equal(t, "first answer", flow.Exchange().Answer)

	failing.Store(true)
	_, err = flow.Submit(context.Background(), "second question")
	var qErr *QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, QueryBackendFailure, qErr.Reason)
	assert.Contains(t, qErr.Message, "model overloaded")

	exch := flow.Exchange()
	assert.Empty(t, exch.Answer)
	assert.False(t, exch.InFlight)
}

func TestSubmit_TransportFailureIsGeneric(t *testing.T) {
	api := NewAPIClient("http://127.0.0.1:1", time.Second, zap.NewNop())
	flow := NewQueryFlow(api, zap.NewNop())

	_, err := flow.Submit(context.Background(), "anything")
	var qErr *QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, QueryGenericFailure, qErr.Reason)
}

func TestSubmit_StaleCompletionCannotOverwriteNewerExchange(t *testing.T) {
	slowEntered := make(chan struct{})
	slowRelease := make(chan struct{})
	flow := newTestQueryFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["query"] == "slow" {
			close(slowEntered)
			<-slowRelease
		}
		writeJSON(w, http.StatusOK, map[string]string{"answer": "answer to " + body["query"]})
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = flow.Submit(context.Background(), "slow")
	}()
	<-slowEntered

	answer, err := flow.Submit(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "answer to fast", answer)

	// Let the first submission finish late; it must not overwrite the newer
	// exchange.
	close(slowRelease)
	wg.Wait()

	exch := flow.Exchange()
	assert.Equal(t, "fast", exch.Question)
	assert.Equal(t, "answer to fast", exch.Answer)
	assert.False(t, exch.InFlight)
}
