package agent

import "time"

// Defaults mirror the deployed assistant: three documents per retrieval,
// shopping-intent trigger words, and a bounded rewrite loop.
const (
	DefaultTopK        = 3
	DefaultMaxRewrites = 3
	DefaultCallTimeout = 60 * time.Second
)

// DefaultTriggerKeywords route a query into retrieval when any of them
// appears in the message (case-insensitive).
var DefaultTriggerKeywords = []string{"price", "review", "product"}

// Config is the opaque record the workflow consumes. The core has no
// file or flag surface of its own; callers own how these are sourced.
type Config struct {
	// TopK bounds how many documents one retrieval returns.
	TopK int

	// TriggerKeywords is the router's retrieval keyword set.
	TriggerKeywords []string

	// MaxRewrites bounds the rewrite cycle. Once spent, the run ends
	// with a CycleLimitError instead of looping.
	MaxRewrites int

	// CallTimeout is the deadline applied to each external call. Zero
	// disables the per-call deadline.
	CallTimeout time.Duration
}

// DefaultConfig returns a Config with all defaults filled in.
func DefaultConfig() Config {
	return Config{
		TopK:            DefaultTopK,
		TriggerKeywords: append([]string(nil), DefaultTriggerKeywords...),
		MaxRewrites:     DefaultMaxRewrites,
		CallTimeout:     DefaultCallTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if len(c.TriggerKeywords) == 0 {
		c.TriggerKeywords = append([]string(nil), DefaultTriggerKeywords...)
	}
	if c.MaxRewrites <= 0 {
		c.MaxRewrites = DefaultMaxRewrites
	}
	return c
}
