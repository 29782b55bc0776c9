package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/echelon/internal/cache"
	"github.com/ppiankov/echelon/internal/model"
	"go.uber.org/zap"
)

// Waiter blocks until a call keyed by key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Result is a hosted classification: the verbatim reply plus whatever could be parsed from it
type Result struct {
	Reply          string
	Classification model.Classification
	Parsed         bool // Echelon recognised
	Exact          bool // Subtype recognised as well
	Provider       string
	Model          string
	TokensUsed     int
	Cached         bool
}

// Classifier is the hosted-model collaborator: provider, reply cache and rate limit
type Classifier struct {
	provider Provider
	config   Config
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  Waiter
	logger   *zap.Logger
}

// ClassifierOption configures a Classifier
type ClassifierOption func(*Classifier)

// WithCache caches replies keyed by provider, model and statement
func WithCache(c cache.Cache, ttl time.Duration) ClassifierOption {
	return func(h *Classifier) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithLimiter throttles provider calls
func WithLimiter(w Waiter) ClassifierOption {
	return func(h *Classifier) {
		h.limiter = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClassifierOption {
	return func(h *Classifier) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewClassifier creates a hosted classifier. A disabled provider yields (nil, nil).
func NewClassifier(config Config, opts ...ClassifierOption) (*Classifier, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return NewClassifierWithProvider(provider, config, opts...), nil
}

// NewClassifierWithProvider wraps an existing provider
func NewClassifierWithProvider(provider Provider, config Config, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		provider: provider,
		config:   config,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderName returns the provider's name
func (c *Classifier) ProviderName() string {
	return c.provider.Name()
}

// IsAvailable reports whether the provider answers
func (c *Classifier) IsAvailable(ctx context.Context) bool {
	return c.provider.IsAvailable(ctx)
}

type cachedReply struct {
	Reply      string `json:"reply"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// Classify sends the statement to the provider, consulting the cache first.
// A reply that cannot be parsed is still returned (Parsed=false) together with
// an error wrapping ErrUnparsedReply.
func (c *Classifier) Classify(ctx context.Context, statement string) (*Result, error) {
	key := cache.Key(c.provider.Name(), c.config.Model, statement)

	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			var hit cachedReply
			if err := json.Unmarshal(data, &hit); err == nil {
				c.logger.Debug("hosted reply cache hit", zap.String("provider", c.provider.Name()))
				return c.result(hit, true)
			}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.provider.Classify(ctx, ClassifyRequest{
		Statement: statement,
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		c.logger.Warn("hosted classification failed",
			zap.String("provider", c.provider.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("hosted classification",
		zap.String("provider", c.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", time.Since(start)))

	reply := cachedReply{Reply: resp.Reply, Model: resp.Model, TokensUsed: resp.TokensUsed}
	result, parseErr := c.result(reply, false)

	// Only well-formed replies are worth replaying
	if c.cache != nil && parseErr == nil {
		if data, err := json.Marshal(reply); err == nil {
			if err := c.cache.Set(key, data, c.cacheTTL); err != nil {
				c.logger.Warn("cache write failed", zap.Error(err))
			}
		}
	}

	return result, parseErr
}

func (c *Classifier) result(reply cachedReply, cached bool) (*Result, error) {
	res := &Result{
		Reply:      reply.Reply,
		Provider:   c.provider.Name(),
		Model:      reply.Model,
		TokensUsed: reply.TokensUsed,
		Cached:     cached,
	}

	classification, exact, err := ParseReply(reply.Reply)
	if err != nil {
		if !errors.Is(err, ErrUnparsedReply) {
			return nil, err
		}
		return res, err
	}

	res.Classification = classification
	res.Parsed = true
	res.Exact = exact
	return res, nil
}
