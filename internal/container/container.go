package container

import (
	"net/http"

	"github.com/prodcheck/prodcheck-go/internal/config"
	"github.com/prodcheck/prodcheck-go/internal/gemini"
	"github.com/prodcheck/prodcheck-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	analyzer gemini.Analyzer
	handler  http.Handler
}

// NewContainer wires the dependency graph from a loaded configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	analyzer := gemini.NewClient(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.UpstreamTimeout,
		gemini.WithMockMode(cfg.UseMock),
	)
	handler := transport.NewHandler(analyzer, cfg)

	return &Container{
		config:   cfg,
		analyzer: analyzer,
		handler:  handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
