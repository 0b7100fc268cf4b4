package jid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenShape(t *testing.T) {
	j := Gen()
	require.Len(t, j, 20)
	for _, c := range j {
		assert.True(t, c >= '0' && c <= '9', "jid %q contains non-digit", j)
	}
}

func TestGenUnique(t *testing.T) {
	j := GenUnique()
	parts := strings.SplitN(j, "_", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 20)
	assert.Len(t, parts[1], 8)
	assert.True(t, IsJid(j))
}

func TestFromTimeParseTimeRoundTrip(t *testing.T) {
	want := time.Date(2023, time.January, 1, 12, 0, 0, 123456000, time.Local)
	j := FromTime(want)
	assert.Equal(t, "20230101120000123456", j)

	got, err := ParseTime(j)
	require.NoError(t, err)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestParseTimeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		jid  string
	}{
		{"empty", ""},
		{"short", "2023010112"},
		{"long", "202301011200001234567"},
		{"non-digit", "2023010112000012345x"},
		{"impossible date", "20231301120000123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTime(tt.jid)
			assert.Error(t, err)
			assert.False(t, IsJid(tt.jid))
		})
	}
}

func TestFormatInstance(t *testing.T) {
	load := map[string]any{
		"fun":      "test.ping",
		"arg":      []any{"a"},
		"tgt":      "*",
		"tgt_type": "glob",
		"user":     "ops",
	}

	info := FormatInstance("20230101120000123456", load)
	assert.Equal(t, "test.ping", info["Function"])
	assert.Equal(t, []any{"a"}, info["Arguments"])
	assert.Equal(t, "*", info["Target"])
	assert.Equal(t, "glob", info["Target-type"])
	assert.Equal(t, "ops", info["User"])
	assert.Equal(t, "2023, Jan 01 12:00:00.123456", info["StartTime"])
}

func TestFormatInstanceDefaults(t *testing.T) {
	info := FormatInstance("not-a-jid", nil)
	assert.Equal(t, "unknown-function", info["Function"])
	assert.Equal(t, []any{}, info["Arguments"])
	assert.Equal(t, "unknown-target", info["Target"])
	assert.Equal(t, "list", info["Target-type"])
	assert.Equal(t, "root", info["User"])
	assert.NotContains(t, info, "StartTime")
}
