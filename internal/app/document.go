package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DocumentID matches the integer primary key the API exposes.
type DocumentID int64

func (id DocumentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseDocumentID(s string) (DocumentID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return DocumentID(n), nil
}

// DocumentStatus reflects the server-side ingestion pipeline. The client
// treats the failure variants as opaque terminal states and never invents or
// advances a status on its own.
type DocumentStatus string

const (
	StatusProcessing     DocumentStatus = "processing"
	StatusProcessed      DocumentStatus = "processed"
	StatusFailed         DocumentStatus = "failed"
	StatusIndexingFailed DocumentStatus = "es_indexing_failed"
	StatusSaveFailed     DocumentStatus = "db_save_failed"
)

func (s DocumentStatus) Failed() bool {
	switch s {
	case StatusFailed, StatusIndexingFailed, StatusSaveFailed:
		return true
	}
	return false
}

type DocumentRecord struct {
	ID              DocumentID     `json:"id"`
	Filename        string         `json:"filename"`
	UploadTimestamp Timestamp      `json:"upload_timestamp"`
	Status          DocumentStatus `json:"status"`
}

// Timestamp tolerates the timezone-naive ISO strings the backend emits for
// datetimes alongside regular RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
