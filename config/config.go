// Package config loads YAML run profiles — the concurrency, rate, and
// retry policy a host wants applied to a Graph.Execute call: parsed,
// struct-validated, SHA256-cached, and de-duplicated under singleflight so
// concurrent loads of the same bytes compile the profile once.
//
// Ordr's graph topology is Go code (node descriptors are closures, not
// data), so this package never produces a *ordr.Graph. What it loads is
// the execution policy around a run: concurrency ceiling, dispatch rate,
// and retry backoff shape, expressed as ordr.ExecuteOption values a caller
// attaches to Graph.Execute.
package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ordr-dev/ordr"
)

// Metadata describes a run profile for operators and discovery tooling; it
// carries no executable meaning of its own.
type Metadata struct {
	Name        string            `yaml:"name" validate:"required,min=1,max=255"`
	Description string            `yaml:"description" validate:"max=1000"`
	Tags        []string          `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	Labels      map[string]string `yaml:"labels" validate:"max=50"`
}

// RetryPolicy shapes the backoff a host applies when a node returns
// ordr.Retry: exponential growth from InitialWait, capped at MaxWait, with
// symmetric jitter to avoid a thundering herd when many nodes retry at
// once.
type RetryPolicy struct {
	MaxAttempts   int     `yaml:"max_attempts" validate:"min=0,max=10"`
	InitialWaitMS int     `yaml:"initial_wait_ms" validate:"omitempty,min=0,max=60000"`
	MaxWaitMS     int     `yaml:"max_wait_ms" validate:"omitempty,min=0,max=300000"`
	JitterPercent float64 `yaml:"jitter_percent" validate:"omitempty,min=0,max=1"`
}

// Delay computes the backoff for the given zero-based retry attempt:
// exponential growth from InitialWait, capped at MaxWait, with symmetric
// jitter to avoid a thundering herd when many nodes retry at once.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	base := time.Duration(p.InitialWaitMS) * time.Millisecond
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	maxWait := time.Duration(p.MaxWaitMS) * time.Millisecond
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}

	delay := base * time.Duration(1<<attempt)
	if delay > maxWait || delay <= 0 {
		delay = maxWait
	}

	jitter := int64(float64(delay) * p.JitterPercent)
	if jitter > 0 {
		delay += time.Duration(rand.Int64N(2*jitter) - jitter)
	}
	if delay < base {
		return base
	}
	return delay
}

// RunConfig is the parsed, validated shape of one YAML run profile.
type RunConfig struct {
	Version            string      `yaml:"version" validate:"required,semver"`
	Metadata           Metadata    `yaml:"metadata" validate:"required"`
	ConcurrencyLimit   int64       `yaml:"concurrency_limit" validate:"omitempty,min=1"`
	RateLimitPerSecond float64     `yaml:"rate_limit_per_second" validate:"omitempty,min=0"`
	RateLimitBurst     int         `yaml:"rate_limit_burst" validate:"omitempty,min=1"`
	Retry              RetryPolicy `yaml:"retry"`
}

// Loader parses, validates, and caches run profiles. The zero value is not
// usable; construct one with NewLoader.
type Loader struct {
	validator *validator.Validate
	cacheMu   sync.RWMutex
	cache     map[string]*RunConfig
	sf        singleflight.Group
}

// NewLoader returns a ready Loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(),
		cache:     make(map[string]*RunConfig),
	}
}

// LoadFile reads, parses, and validates a run profile from a YAML file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*RunConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return l.Load(ctx, data)
}

// LoadReader reads, parses, and validates a run profile from r.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) (*RunConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return l.Load(ctx, data)
}

// Load parses and validates a run profile from raw YAML bytes, caching the
// result under the SHA256 hash of the normalized bytes so repeated loads of
// identical configuration never re-validate, and singleflight-coalescing
// concurrent loads of the same bytes into one compilation.
//
// WARNING: the returned *RunConfig is shared from the cache. Callers must
// not mutate it.
func (l *Loader) Load(_ context.Context, data []byte) (*RunConfig, error) {
	normalized := bytes.TrimSpace(data)

	sum := sha256.Sum256(normalized)
	hash := hex.EncodeToString(sum[:])

	if cfg, ok := l.getCached(hash); ok {
		return cfg, nil
	}

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		if cfg, ok := l.getCached(hash); ok {
			return cfg, nil
		}

		var cfg RunConfig
		if err := yaml.Unmarshal(normalized, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
		if err := l.validator.Struct(&cfg); err != nil {
			return nil, fmt.Errorf("config: validate: %w", err)
		}

		l.cacheMu.Lock()
		l.cache[hash] = &cfg
		l.cacheMu.Unlock()

		return &cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RunConfig), nil
}

func (l *Loader) getCached(hash string) (*RunConfig, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	cfg, ok := l.cache[hash]
	return cfg, ok
}

// ExecuteOptions translates a run profile into the ordr.ExecuteOption
// values it describes: a concurrency ceiling when ConcurrencyLimit is set,
// a dispatch rate limiter when RateLimitPerSecond is set. Retry backoff is
// not an ExecuteOption — node producers call RetryPolicy.Delay themselves,
// since only the producer knows when an error is transient.
func (c *RunConfig) ExecuteOptions() []ordr.ExecuteOption {
	var opts []ordr.ExecuteOption
	if c.ConcurrencyLimit > 0 {
		opts = append(opts, ordr.WithConcurrencyLimit(c.ConcurrencyLimit))
	}
	if c.RateLimitPerSecond > 0 {
		opts = append(opts, ordr.WithRateLimit(newRateLimiter(c.RateLimitPerSecond, c.RateLimitBurst)))
	}
	return opts
}
