package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type QueryFailure int

const (
	EmptyQuery QueryFailure = iota
	QueryBackendFailure
	QueryGenericFailure
)

type QueryError struct {
	Reason  QueryFailure
	Message string
}

func (e *QueryError) Error() string { return e.Message }

// QueryExchange is the single question/answer pair the flow tracks. It is
// reset on every submission.
type QueryExchange struct {
	Question string
	Answer   string
	InFlight bool
}

// QueryFlow submits natural-language questions. The UI is expected to disable
// resubmission while one is in flight, but the flow stays safe if called
// twice: each submission bumps a generation, and only the newest generation
// may write the exchange, so the displayed answer is always the latest
// submission's. Stale completions are discarded, which also covers the
// "view went away mid-call" case.
type QueryFlow struct {
	mu   sync.Mutex
	api  *APIClient
	log  *zap.Logger
	gen  uint64
	exch QueryExchange
}

func NewQueryFlow(api *APIClient, log *zap.Logger) *QueryFlow {
	return &QueryFlow{api: api, log: log}
}

func (f *QueryFlow) Exchange() QueryExchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exch
}

func (f *QueryFlow) Submit(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &QueryError{Reason: EmptyQuery, Message: "please enter a question"}
	}

	f.mu.Lock()
	f.gen++
	myGen := f.gen
	f.exch = QueryExchange{Question: question, InFlight: true}
	f.mu.Unlock()

	answer, err := f.api.Query(ctx, question)

	f.mu.Lock()
	defer f.mu.Unlock()
	stale := myGen != f.gen

	var qerr *QueryError
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind != ErrNetwork {
			qerr = &QueryError{Reason: QueryBackendFailure, Message: "query failed: " + apiErr.Message}
		} else {
			qerr = &QueryError{Reason: QueryGenericFailure, Message: "query failed, please try again"}
		}
		f.log.Warn("query failed", zap.Bool("stale", stale), zap.Error(err))
	}

	if !stale {
		f.exch.InFlight = false
		if qerr != nil {
			// Failure clears any previous answer.
			f.exch.Answer = ""
		} else {
			f.exch.Answer = answer
		}
	}

	if qerr != nil {
		return "", qerr
	}
	return answer, nil
}
