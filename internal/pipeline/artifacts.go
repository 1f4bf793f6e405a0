package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Artifact is one independent output of a run, such as the JSON report or
// the history row.
type Artifact struct {
	// Name identifies the artifact in logs and errors.
	Name string

	// Write produces the artifact. It must not depend on other artifacts.
	Write func(ctx context.Context) error
}

// ArtifactGroup writes artifacts concurrently with errgroup, bounded by a
// concurrency limit. The first failure cancels the context of the others.
type ArtifactGroup struct {
	artifacts   []Artifact
	concurrency int
	logger      *slog.Logger
}

// GroupOption configures an ArtifactGroup.
type GroupOption func(*ArtifactGroup)

// WithGroupLogger sets a custom logger for artifact writing.
func WithGroupLogger(logger *slog.Logger) GroupOption {
	return func(g *ArtifactGroup) {
		g.logger = logger
	}
}

// WithConcurrency sets the maximum number of artifacts written at once.
// Default is 4 if not specified.
func WithConcurrency(n int) GroupOption {
	return func(g *ArtifactGroup) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// NewArtifactGroup creates an empty ArtifactGroup.
func NewArtifactGroup(opts ...GroupOption) *ArtifactGroup {
	g := &ArtifactGroup{
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Add registers an artifact writer.
func (g *ArtifactGroup) Add(name string, write func(ctx context.Context) error) {
	g.artifacts = append(g.artifacts, Artifact{Name: name, Write: write})
}

// Len returns the number of registered artifacts.
func (g *ArtifactGroup) Len() int {
	return len(g.artifacts)
}

// Run writes every registered artifact and returns the first error,
// prefixed with the artifact name.
func (g *ArtifactGroup) Run(ctx context.Context) error {
	if len(g.artifacts) == 0 {
		return nil
	}

	startTime := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for _, artifact := range g.artifacts {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := artifact.Write(ctx); err != nil {
				g.logger.Warn("artifact failed", "artifact", artifact.Name, "error", err)
				return fmt.Errorf("%s: %w", artifact.Name, err)
			}
			g.logger.Debug("artifact written", "artifact", artifact.Name)
			return nil
		})
	}

	err := eg.Wait()
	g.logger.Debug("artifacts complete",
		"total", len(g.artifacts),
		"elapsed", time.Since(startTime),
	)
	return err
}
