package generation

import (
	"context"
	"sync"

	"graphics-server/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Factory builds an ImageGenerator for an API key.
type Factory func(ctx context.Context, apiKey string) (ImageGenerator, error)

// Provider constructs the generator on first use. Concurrent first calls share
// one construction; a failed construction is retried on the next call.
type Provider struct {
	apiKey  string
	factory Factory
	logger  *zap.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	generator ImageGenerator
}

// NewProvider returns a provider. An empty apiKey makes Get fail with models.ErrGeminiNotConfigured.
func NewProvider(apiKey string, factory Factory, logger *zap.Logger) *Provider {
	return &Provider{apiKey: apiKey, factory: factory, logger: logger.Named("GenerationProvider")}
}

// Configured reports whether an API key is present.
func (p *Provider) Configured() bool {
	return p.apiKey != ""
}

// Get returns the cached generator, building it if needed.
func (p *Provider) Get(ctx context.Context) (ImageGenerator, error) {
	if p.apiKey == "" {
		return nil, models.ErrGeminiNotConfigured
	}

	p.mu.RLock()
	g := p.generator
	p.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	val, err, _ := p.group.Do("generator", func() (interface{}, error) {
		p.mu.RLock()
		existing := p.generator
		p.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		created, err := p.factory(ctx, p.apiKey)
		if err != nil {
			p.logger.Error("Failed to create image generator", zap.Error(err))
			return nil, err
		}
		p.mu.Lock()
		p.generator = created
		p.mu.Unlock()
		p.logger.Info("Image generator initialized")
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(ImageGenerator), nil
}
