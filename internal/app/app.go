// Package app wires the resolution engine into the command-line host: it
// owns the configured logger, loads the configuration document, and runs
// either template mode (render the document) or entity mode (print an
// entity's prerequisite order).
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/depweave/internal/ctxlog"
	"github.com/vk/depweave/internal/document"
	"github.com/vk/depweave/internal/entity"
	"github.com/vk/depweave/internal/resolver"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	env    resolver.EnvProvider
}

// New is the constructor for the main application. Logs go to errW so that
// rendered output on outW stays machine-readable.
func New(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		env:    resolver.OSEnv{},
	}
}

// SetEnv replaces the environment provider. This is primarily for testing.
func (a *App) SetEnv(env resolver.EnvProvider) {
	a.env = env
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "config_path", cfg.ConfigPath)

	f, err := os.Open(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to open configuration document: %w", err)
	}
	defer f.Close()

	doc, err := document.Load(f)
	if err != nil {
		return err
	}
	a.logger.Debug("Configuration document loaded.", "top_level_keys", len(doc))

	if cfg.EntityID != "" {
		return a.runEntityMode(ctx, doc, cfg.EntityID)
	}
	return a.runTemplateMode(ctx, doc)
}

// runTemplateMode renders the document and writes the expanded YAML.
func (a *App) runTemplateMode(ctx context.Context, doc document.Document) error {
	rendered, err := resolver.Resolve(ctx, doc, a.env)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration document: %w", err)
	}
	return rendered.Encode(a.outW)
}

// runEntityMode prints the entity's prerequisite order, one id per line.
func (a *App) runEntityMode(ctx context.Context, doc document.Document, id string) error {
	entities, err := doc.Entities()
	if err != nil {
		return err
	}

	order, err := entity.Resolve(ctx, entity.MapSource(entities), id)
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies of entity %q: %w", id, err)
	}

	for _, dep := range order {
		fmt.Fprintln(a.outW, dep)
	}
	return nil
}
