package app

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DeletionPhase tracks a single document's in-flight or just-finished delete.
// Entries live only until the next Refresh, which wipes them along with the
// snapshot they referred to.
type DeletionPhase int

const (
	DeletionAbsent DeletionPhase = iota
	DeletionInFlight
	DeletionDone
	DeletionFailed
)

type UploadFailure int

const (
	UploadTooLarge UploadFailure = iota
	UploadUnsupportedType
	UploadServerFailure
	UploadNoFile
)

type UploadError struct {
	Reason  UploadFailure
	Message string
}

func (e *UploadError) Error() string { return e.Message }

type DeleteError struct {
	ID      DocumentID
	Message string
}

func (e *DeleteError) Error() string { return e.Message }

type RefreshError struct {
	Message string
}

func (e *RefreshError) Error() string { return e.Message }

type deletion struct {
	phase DeletionPhase
	done  chan struct{}
	err   error
}

// DocumentRegistry is a read-through cache of the server's document list. The
// server is the source of truth: Refresh replaces the snapshot wholesale, and
// a record only disappears locally after the server confirmed its deletion.
type DocumentRegistry struct {
	mu        sync.Mutex
	api       *APIClient
	log       *zap.Logger
	docs      []DocumentRecord
	loading   bool
	deletions map[DocumentID]*deletion
}

func NewDocumentRegistry(api *APIClient, log *zap.Logger) *DocumentRegistry {
	return &DocumentRegistry{
		api:       api,
		log:       log,
		deletions: make(map[DocumentID]*deletion),
	}
}

// Documents returns the current snapshot.
func (r *DocumentRegistry) Documents() []DocumentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DocumentRecord(nil), r.docs...)
}

func (r *DocumentRegistry) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *DocumentRegistry) DeletionState(id DocumentID) DeletionPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deletions[id]; ok {
		return d.phase
	}
	return DeletionAbsent
}

// Refresh fetches the full list and replaces the cache. On failure the
// previous snapshot is kept; a transient error should not blank the list.
func (r *DocumentRegistry) Refresh(ctx context.Context) ([]DocumentRecord, error) {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	docs, err := r.api.ListDocuments(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.log.Warn("document refresh failed", zap.Error(err))
		return append([]DocumentRecord(nil), r.docs...), &RefreshError{
			Message: "failed to load documents: " + UserMessage(err),
		}
	}

	r.docs = docs
	// A fresh snapshot supersedes whatever the finished deletes referred to.
	for id, d := range r.deletions {
		if d.phase != DeletionInFlight {
			delete(r.deletions, id)
		}
	}
	return append([]DocumentRecord(nil), r.docs...), nil
}

// Upload sends the file and, on success, appends the created record to the
// snapshot. It deliberately does not re-fetch the list; the caller decides
// when to Refresh.
func (r *DocumentRegistry) Upload(ctx context.Context, filename string, contents []byte) (DocumentRecord, error) {
	if strings.TrimSpace(filename) == "" || len(contents) == 0 {
		return DocumentRecord{}, &UploadError{Reason: UploadNoFile, Message: "please select a file first"}
	}

	rec, err := r.api.UploadDocument(ctx, filename, contents)
	if err != nil {
		return DocumentRecord{}, r.mapUploadError(err)
	}

	r.mu.Lock()
	r.docs = append(r.docs, rec)
	r.mu.Unlock()

	r.log.Info("document uploaded",
		zap.Int64("id", int64(rec.ID)),
		zap.String("filename", rec.Filename),
		zap.String("status", string(rec.Status)))
	return rec, nil
}

func (r *DocumentRegistry) mapUploadError(err error) error {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return &UploadError{Reason: UploadServerFailure, Message: "upload failed, please try again"}
	}
	switch {
	case apiErr.Status == http.StatusRequestEntityTooLarge:
		return &UploadError{Reason: UploadTooLarge, Message: "file is too large"}
	case apiErr.Status == http.StatusUnsupportedMediaType, apiErr.Kind == ErrValidation:
		return &UploadError{Reason: UploadUnsupportedType, Message: "file type is not supported"}
	case apiErr.Kind == ErrAuthRejected:
		return apiErr
	default:
		return &UploadError{Reason: UploadServerFailure, Message: "upload failed: " + apiErr.Message}
	}
}

// Delete removes a document server-side, then drops it from the snapshot. At
// most one delete per id is in flight: a concurrent second call for the same
// id never reaches the network and resolves to the first call's outcome.
func (r *DocumentRegistry) Delete(ctx context.Context, id DocumentID) error {
	r.mu.Lock()
	if d, ok := r.deletions[id]; ok && d.phase == DeletionInFlight {
		ch := d.done
		r.mu.Unlock()
		select {
		case <-ch:
			return d.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d := &deletion{phase: DeletionInFlight, done: make(chan struct{})}
	r.deletions[id] = d
	r.mu.Unlock()

	err := r.api.DeleteDocument(ctx, id)

	r.mu.Lock()
	if err != nil {
		d.phase = DeletionFailed
		d.err = &DeleteError{ID: id, Message: "failed to delete document: " + UserMessage(err)}
		r.log.Warn("delete failed", zap.Int64("id", int64(id)), zap.Error(err))
	} else {
		d.phase = DeletionDone
		kept := r.docs[:0]
		for _, doc := range r.docs {
			if doc.ID != id {
				kept = append(kept, doc)
			}
		}
		r.docs = kept
		r.log.Info("document deleted", zap.Int64("id", int64(id)))
	}
	r.mu.Unlock()

	close(d.done)
	return d.err
}
