package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider hands out one shared Recognizer. The first Get creates it;
// concurrent first callers share that single initialization. A successful
// handle is reused unconditionally; a failed initialization is not cached.
type Provider struct {
	factory Factory
	cfg     Config
	logger  *zap.Logger

	group singleflight.Group

	mu    sync.Mutex
	rec   Recognizer
	langs []string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used for initialization events.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider creates a Provider. Nothing is initialized until Get.
func NewProvider(factory Factory, cfg Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		factory: factory,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the shared recognizer, creating it on first use.
func (p *Provider) Get(ctx context.Context) (Recognizer, error) {
	if p == nil || p.factory == nil {
		return nil, ErrEngineUnavailable
	}
	if rec := p.cached(); rec != nil {
		return rec, nil
	}

	// Initialization is detached from the starting caller's cancellation;
	// each caller only stops waiting when its own ctx ends.
	initCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan("init", func() (any, error) {
		if rec := p.cached(); rec != nil {
			return rec, nil
		}
		rec, langs, err := p.initialize(initCtx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.rec, p.langs = rec, langs
		p.mu.Unlock()
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.logger.Debug("joined in-flight OCR initialization")
		}
		return res.Val.(Recognizer), nil
	}
}

// Languages reports the language set actually loaded, or nil before the
// first successful Get.
func (p *Provider) Languages() []string {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.langs)
}

// Close releases the recognizer if it holds native resources. A later Get
// creates a new one.
func (p *Provider) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	rec := p.rec
	p.rec, p.langs = nil, nil
	p.mu.Unlock()

	if c, ok := rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Provider) cached() Recognizer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rec
}

func (p *Provider) initialize(ctx context.Context) (Recognizer, []string, error) {
	fallback := []string{p.cfg.FallbackLanguage}
	primary := p.cfg.PrimaryLanguages

	var primaryErr error
	if len(primary) > 0 && !slices.Equal(primary, fallback) {
		rec, err := p.factory(ctx, primary, p.cfg.AssetPaths)
		if err == nil {
			p.logger.Info("OCR engine ready", zap.String("languages", LanguageSpec(primary)))
			return rec, slices.Clone(primary), nil
		}
		primaryErr = fmt.Errorf("%w (%s): %w", ErrLanguageInitFailed, LanguageSpec(primary), err)
		p.logger.Warn("OCR primary languages failed, falling back",
			zap.String("languages", LanguageSpec(primary)),
			zap.String("fallback", p.cfg.FallbackLanguage),
			zap.Error(err),
		)
	}

	if p.cfg.FallbackLanguage == "" {
		return nil, nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, errors.Join(primaryErr, errors.New("no fallback language configured")))
	}
	rec, err := p.factory(ctx, fallback, p.cfg.AssetPaths)
	if err != nil {
		fallbackErr := fmt.Errorf("%w (%s): %w", ErrLanguageInitFailed, p.cfg.FallbackLanguage, err)
		return nil, nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, errors.Join(primaryErr, fallbackErr))
	}
	p.logger.Info("OCR engine ready", zap.String("languages", p.cfg.FallbackLanguage))
	return rec, fallback, nil
}
