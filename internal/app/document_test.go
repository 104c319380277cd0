package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_ParsesBackendVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"rfc3339", `"2025-06-01T10:30:00Z"`},
		{"rfc3339 nano", `"2025-06-01T10:30:00.123456789Z"`},
		{"naive with micros", `"2025-06-01T10:30:00.123456"`},
		{"naive", `"2025-06-01T10:30:00"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts))
			assert.Equal(t, 2025, ts.Year())
			assert.Equal(t, 30, ts.Minute())
		})
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestDocumentStatus_Failed(t *testing.T) {
	assert.False(t, StatusProcessing.Failed())
	assert.False(t, StatusProcessed.Failed())
	assert.True(t, StatusFailed.Failed())
	assert.True(t, StatusIndexingFailed.Failed())
	assert.True(t, StatusSaveFailed.Failed())
}

func TestParseDocumentID(t *testing.T) {
	id, err := ParseDocumentID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, DocumentID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseDocumentID("abc")
	assert.Error(t, err)
}

func TestDocumentRecord_UnmarshalWireShape(t *testing.T) {
	raw := `{"id":3,"filename":"a.pdf","upload_timestamp":"2025-06-01T10:30:00.123456","status":"es_indexing_failed"}`
	var rec DocumentRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, DocumentID(3), rec.ID)
	assert.Equal(t, "a.pdf", rec.Filename)
	assert.True(t, rec.Status.Failed())
}
