package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOptionsHardDefaults(t *testing.T) {
	opts := MergeOptions(Options{}, Options{}, nil)
	assert.Equal(t, "", opts.Host)
	assert.Equal(t, 27017, opts.Port)
	assert.Equal(t, "salt", opts.DB)
	assert.False(t, opts.Indexes)
}

func TestMergeOptionsPrecedence(t *testing.T) {
	defaults := Options{Host: "default-host", Port: 27018, DB: "default-db", User: "default-user"}
	profile := Options{Host: "alt-host", DB: "alt-db"}
	overrides := map[string]any{"db": "kwarg-db"}

	opts := MergeOptions(defaults, profile, overrides)

	assert.Equal(t, "kwarg-db", opts.DB, "per-call override wins")
	assert.Equal(t, "alt-host", opts.Host, "profile beats default namespace")
	assert.Equal(t, 27018, opts.Port, "unset profile field falls through")
	assert.Equal(t, "default-user", opts.User, "default namespace beats hard defaults")
}

func TestMergeOptionsOverrideTypes(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		check     func(t *testing.T, opts Options)
	}{
		{
			name:      "port as int",
			overrides: map[string]any{"port": 27020},
			check:     func(t *testing.T, o Options) { assert.Equal(t, 27020, o.Port) },
		},
		{
			name:      "port as string",
			overrides: map[string]any{"port": "27021"},
			check:     func(t *testing.T, o Options) { assert.Equal(t, 27021, o.Port) },
		},
		{
			name:      "port as float from decoded json",
			overrides: map[string]any{"port": float64(27022)},
			check:     func(t *testing.T, o Options) { assert.Equal(t, 27022, o.Port) },
		},
		{
			name:      "unparseable port ignored",
			overrides: map[string]any{"port": "not-a-port"},
			check:     func(t *testing.T, o Options) { assert.Equal(t, 27017, o.Port) },
		},
		{
			name:      "indexes as bool",
			overrides: map[string]any{"indexes": true},
			check:     func(t *testing.T, o Options) { assert.True(t, o.Indexes) },
		},
		{
			name:      "indexes as string",
			overrides: map[string]any{"indexes": "true"},
			check:     func(t *testing.T, o Options) { assert.True(t, o.Indexes) },
		},
		{
			name:      "uri and credentials",
			overrides: map[string]any{"uri": "mongodb://h/db", "user": "u", "password": "p"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, "mongodb://h/db", o.URI)
				assert.Equal(t, "u", o.User)
				assert.Equal(t, "p", o.Password)
			},
		},
		{
			name:      "unknown keys ignored",
			overrides: map[string]any{"bogus": "x"},
			check:     func(t *testing.T, o Options) { assert.Equal(t, "salt", o.DB) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, MergeOptions(Options{}, Options{}, tt.overrides))
		})
	}
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierLegacy, ParseTier("legacy"))
	assert.Equal(t, TierModern, ParseTier("modern"))
	assert.Equal(t, TierModern, ParseTier(""))
	assert.Equal(t, TierModern, ParseTier("something-else"))
}
