// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/survey-intake/models"
	"github.com/danielhkuo/survey-intake/testutil"
)

func openTestJSONL(t *testing.T) *JSONLSink {
	t.Helper()
	sink, err := OpenJSONL(filepath.Join(t.TempDir(), "responses.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestJSONL_SaveMergesTimestampAndIP(t *testing.T) {
	sink := openTestJSONL(t)
	received := time.Date(2025, 3, 14, 9, 26, 53, 123_000_000, time.UTC)

	res, err := sink.Save(context.Background(), Record{
		Fields: map[string]json.RawMessage{
			"participantName": json.RawMessage(`"Alice"`),
			"answers": json.RawMessage(`{
				"q1": "yes"
			}`),
			"ip": json.RawMessage(`"spoofed"`),
		},
		ReceivedAt: received,
		IP:         "203.0.113.7",
	})
	require.NoError(t, err)
	assert.Nil(t, res.ID, "log sink never assigns ids")

	lines := testutil.ReadLines(t, sink.Path())
	require.Len(t, lines, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "Alice", got["participantName"])
	assert.Equal(t, map[string]any{"q1": "yes"}, got["answers"])
	assert.Equal(t, "2025-03-14T09:26:53.123Z", got["timestamp"])
	assert.Equal(t, "203.0.113.7", got["ip"], "server ip overrides client field")
}

func TestJSONL_RequiresFields(t *testing.T) {
	sink := openTestJSONL(t)

	_, err := sink.Save(context.Background(), Record{
		Submission: &models.Submission{
			ParticipantName: "Bob",
			Answers:         json.RawMessage(`{"q1":2}`),
			Order:           []string{"q1"},
		},
		ReceivedAt: time.Now(),
		IP:         "127.0.0.1",
	})
	assert.ErrorIs(t, err, ErrNoFields)
	assert.Empty(t, testutil.ReadLines(t, sink.Path()))
}

func TestJSONL_EmptyFieldsStillLogged(t *testing.T) {
	sink := openTestJSONL(t)

	_, err := sink.Save(context.Background(), Record{
		Fields:     map[string]json.RawMessage{},
		ReceivedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IP:         "127.0.0.1",
	})
	require.NoError(t, err)

	lines := testutil.ReadLines(t, sink.Path())
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"timestamp":"2025-01-01T00:00:00.000Z","ip":"127.0.0.1"}`, lines[0])
}

func TestJSONL_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := OpenJSONL(path)
		require.NoError(t, err)
		_, err = sink.Save(context.Background(), Record{Fields: map[string]json.RawMessage{}, ReceivedAt: time.Now()})
		require.NoError(t, err)
		require.NoError(t, sink.Close())
	}

	assert.Len(t, testutil.ReadLines(t, path), 2)
}

func TestJSONL_ConcurrentSavesProduceWholeLines(t *testing.T) {
	sink := openTestJSONL(t)
	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, _ := json.Marshal(fmt.Sprintf("participant-%d", i))
			_, err := sink.Save(context.Background(), Record{
				Fields:     map[string]json.RawMessage{"participantName": name},
				ReceivedAt: time.Now(),
				IP:         "10.0.0.1",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	lines := testutil.ReadLines(t, sink.Path())
	require.Len(t, lines, writers)

	seen := make(map[string]bool, writers)
	for _, l := range lines {
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &got), "corrupted line: %s", l)
		seen[got["participantName"].(string)] = true
	}
	assert.Len(t, seen, writers)
}

func TestJSONL_SaveAfterClose(t *testing.T) {
	sink := openTestJSONL(t)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "second close is a no-op")

	_, err := sink.Save(context.Background(), Record{Fields: map[string]json.RawMessage{}, ReceivedAt: time.Now()})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestJSONL_SaveCancelledContext(t *testing.T) {
	sink := openTestJSONL(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sink.Save(ctx, Record{Fields: map[string]json.RawMessage{}, ReceivedAt: time.Now()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, testutil.ReadLines(t, sink.Path()))
}

func TestOpenJSONL_BadPath(t *testing.T) {
	_, err := OpenJSONL(filepath.Join(t.TempDir(), "missing-dir", "responses.jsonl"))
	assert.Error(t, err)
}
