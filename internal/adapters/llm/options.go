package llm

import "time"

// Options carries the per-backend connection settings. Zero values fall back
// to each adapter's defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = float32(0.1)
	defaultMaxTokens   = 2000
)

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

func (o Options) temperature() float32 {
	if o.Temperature > 0 {
		return o.Temperature
	}
	return defaultTemperature
}

func (o Options) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return defaultMaxTokens
}
