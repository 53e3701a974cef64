package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// ClientFactory builds a chat client for a model spec.
type ClientFactory func(spec ModelSpec) LLMClient

// EmbedderFactory builds an embedder for a model spec.
type EmbedderFactory func(spec ModelSpec) (Embedder, error)

// Router resolves a role to a concrete model and walks the role's fallback
// chain on failure. The chain itself is the retry policy; there is no
// backoff loop on top of it.
type Router struct {
	config    RoleConfig
	switches  *SwitchStore
	factory   ClientFactory
	embedders EmbedderFactory
	timeout   time.Duration

	mu      sync.Mutex
	clients map[ModelSpec]LLMClient
	embeds  map[ModelSpec]Embedder
}

type RouterOption func(*Router)

func WithClientFactory(f ClientFactory) RouterOption {
	return func(r *Router) { r.factory = f }
}

func WithEmbedderFactory(f EmbedderFactory) RouterOption {
	return func(r *Router) { r.embedders = f }
}

// WithCallTimeout bounds each individual model attempt. A timed-out attempt
// counts as a failure and the chain advances.
func WithCallTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

func NewRouter(config RoleConfig, switches *SwitchStore, opts ...RouterOption) *Router {
	r := &Router{
		config:    config,
		switches:  switches,
		factory:   DefaultClientFactory,
		embedders: DefaultEmbedderFactory,
		timeout:   60 * time.Second,
		clients:   make(map[ModelSpec]LLMClient),
		embeds:    make(map[ModelSpec]Embedder),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultClientFactory maps provider names to the bundled clients.
func DefaultClientFactory(spec ModelSpec) LLMClient {
	switch spec.Provider {
	case "anthropic":
		return NewAnthropicClient(spec.Name)
	case "openai":
		return NewOpenAICompatClient("https://api.openai.com/v1/chat/completions", os.Getenv("OPENAI_API_KEY"), spec.Name)
	default:
		return NewGroqClient(spec.Name)
	}
}

// DefaultEmbedderFactory maps provider names to the bundled embedders.
func DefaultEmbedderFactory(spec ModelSpec) (Embedder, error) {
	switch spec.Provider {
	case "openai":
		return NewOpenAIEmbedder("https://api.openai.com/v1/embeddings", os.Getenv("OPENAI_API_KEY"), spec.Name), nil
	default:
		return NewOllamaEmbedder(spec.Name)
	}
}

// Switches exposes the runtime enable/disable store.
func (r *Router) Switches() *SwitchStore {
	return r.switches
}

// Invoke runs a chat completion through the role's chain. When the role is
// disabled it delivers a deterministic canned reply instead of silently
// doing nothing. When every model in the chain fails it returns a
// ModelError of kind model_unavailable wrapping the last cause.
//
// If a model fails after streaming chunks to the callback, the chain does
// not advance: the delivered prefix is already on screen and a second model
// would duplicate it. The error surfaces and the caller keeps the prefix.
func (r *Router) Invoke(ctx context.Context, role Role, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	if !r.switches.Enabled(role) {
		return callback(disabledReply(role))
	}

	chain, ok := r.config[role]
	if !ok {
		return &ModelError{Kind: KindModelUnavailable, Cause: fmt.Errorf("no models configured for role %s", role)}
	}

	var lastErr error
	for _, spec := range chain.Chain() {
		delivered := false
		guarded := func(chunk string) error {
			delivered = true
			return callback(chunk)
		}

		callOpts := append([]LLMOption{
			WithTemperature(spec.Temperature),
			WithMaxTokens(spec.MaxTokens),
			WithTopP(spec.TopP),
		}, opts...)

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		err := r.clientFor(spec).GenerateInference(callCtx, messages, guarded, callOpts...)
		latency := time.Since(start)
		cancel()

		logger.Info("model attempt",
			zap.String("role", string(role)),
			zap.String("model", spec.Name),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("outcome", outcomeOf(err)))

		if err == nil {
			return nil
		}

		if delivered || errors.Is(ctx.Err(), context.Canceled) {
			return &ModelError{Kind: KindOf(err), Cause: err}
		}

		lastErr = err
	}

	return &ModelError{Kind: KindModelUnavailable, Cause: lastErr}
}

// Embed resolves the embedding role and walks its chain. A disabled
// embedding role is reported as model_unavailable; callers degrade to their
// non-semantic fallback path.
func (r *Router) Embed(ctx context.Context, text string) ([]float32, error) {
	if !r.switches.Enabled(RoleEmbedding) {
		return nil, &ModelError{Kind: KindModelUnavailable, Cause: errors.New("embedding role is disabled")}
	}

	chain, ok := r.config[RoleEmbedding]
	if !ok {
		return nil, &ModelError{Kind: KindModelUnavailable, Cause: errors.New("no models configured for role embedding")}
	}

	var lastErr error
	for _, spec := range chain.Chain() {
		embedder, err := r.embedderFor(spec)
		if err != nil {
			lastErr = err
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		vector, err := embedder.EmbedText(callCtx, text)
		latency := time.Since(start)
		cancel()

		logger.Info("model attempt",
			zap.String("role", string(RoleEmbedding)),
			zap.String("model", spec.Name),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("outcome", outcomeOf(err)))

		if err == nil {
			return vector, nil
		}
		lastErr = err
	}

	return nil, &ModelError{Kind: KindModelUnavailable, Cause: lastErr}
}

func (r *Router) clientFor(spec ModelSpec) LLMClient {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[spec]; ok {
		return client
	}
	client := r.factory(spec)
	r.clients[spec] = client
	return client
}

func (r *Router) embedderFor(spec ModelSpec) (Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if embedder, ok := r.embeds[spec]; ok {
		return embedder, nil
	}
	embedder, err := r.embedders(spec)
	if err != nil {
		return nil, err
	}
	r.embeds[spec] = embedder
	return embedder, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}

// disabledReply is the deterministic reply delivered when a role has been
// switched off by an operator.
func disabledReply(role Role) string {
	switch role {
	case RoleGeneration, RoleReasoning:
		return "Le service de génération est momentanément désactivé. Veuillez réessayer plus tard."
	default:
		return fmt.Sprintf("Le service %s est momentanément désactivé.", role)
	}
}
