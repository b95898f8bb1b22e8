package queue

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAuditLine(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteAuditLine(&buf, EntryChangedEvent{Op: OpCreated, EntryID: 5, Title: "Heat", Type: "Movie", OccurredAt: at}))
	assert.Equal(t, "[2025-03-01T09:30:00Z] Entry created | entry_id=5 | type=\"Movie\" | title=\"Heat\"\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteAuditLine(&buf, EntryChangedEvent{Op: OpDeleted, EntryID: 5, OccurredAt: at}))
	assert.Equal(t, "[2025-03-01T09:30:00Z] Entry deleted | entry_id=5\n", buf.String())
}

func TestHandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")

	for _, op := range []string{OpCreated, OpUpdated} {
		body, err := json.Marshal(EntryChangedEvent{Op: op, EntryID: 1, Title: "Heat", Type: "Movie", OccurredAt: time.Now()})
		require.NoError(t, err)
		require.NoError(t, HandleMessage(body, path))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Contains(t, string(lines[1]), "Entry updated")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	assert.Error(t, HandleMessage([]byte("{not json"), path))
	assert.Error(t, HandleMessage([]byte(`{"op":"created"}`), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
