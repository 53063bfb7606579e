package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf}).With(String("run_id", "abc"))
	log.Info(context.Background(), "sampled planets", Int("count", 42))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sampled planets", rec["msg"])
	assert.Equal(t, "abc", rec["run_id"])
	assert.Equal(t, float64(42), rec["count"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
	log.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoop(t *testing.T) {
	log := Noop().With(String("k", "v"))
	log.Error(context.Background(), "dropped")
}
