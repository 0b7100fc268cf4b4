package database

import (
	"fmt"
	"strconv"
)

// Tier selects the driver capability level the resolver operates at. The
// legacy tier mimics stores and drivers that predate URI connection strings
// and idempotent index creation.
type Tier string

const (
	TierModern Tier = "modern"
	TierLegacy Tier = "legacy"
)

// ParseTier maps a configuration string onto a Tier, defaulting to modern.
func ParseTier(s string) Tier {
	if s == string(TierLegacy) {
		return TierLegacy
	}
	return TierModern
}

// Options holds the connection configuration for a single resolve. URI and
// Host are mutually exclusive; zero-valued fields are treated as unset.
type Options struct {
	Host     string
	Port     int
	DB       string
	User     string
	Password string
	URI      string
	Indexes  bool
}

// defaultOptions are the hard defaults at the bottom of the precedence
// chain. Host is deliberately left unset so an explicitly configured host
// can be told apart from the localhost fallback when checking URI conflicts.
func defaultOptions() Options {
	return Options{Port: 27017, DB: "salt"}
}

// overlay returns base with every set field of layer applied on top.
// Indexes is sticky: once a layer enables it, it stays enabled.
func overlay(base, layer Options) Options {
	if layer.Host != "" {
		base.Host = layer.Host
	}
	if layer.Port != 0 {
		base.Port = layer.Port
	}
	if layer.DB != "" {
		base.DB = layer.DB
	}
	if layer.User != "" {
		base.User = layer.User
	}
	if layer.Password != "" {
		base.Password = layer.Password
	}
	if layer.URI != "" {
		base.URI = layer.URI
	}
	if layer.Indexes {
		base.Indexes = true
	}
	return base
}

// MergeOptions builds the effective options for one call. Precedence, lowest
// to highest: hard defaults, the default namespace, the selected profile,
// then per-call overrides keyed by option name.
func MergeOptions(defaults, profile Options, overrides map[string]any) Options {
	opts := overlay(defaultOptions(), defaults)
	opts = overlay(opts, profile)

	for key, val := range overrides {
		switch key {
		case "host":
			opts.Host = fmt.Sprint(val)
		case "port":
			if p, ok := toInt(val); ok {
				opts.Port = p
			}
		case "db":
			opts.DB = fmt.Sprint(val)
		case "user":
			opts.User = fmt.Sprint(val)
		case "password":
			opts.Password = fmt.Sprint(val)
		case "uri":
			opts.URI = fmt.Sprint(val)
		case "indexes":
			opts.Indexes = toBool(val)
		}
	}
	return opts
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		p, err := strconv.Atoi(n)
		return p, err == nil
	}
	return 0, false
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	return false
}
