package pipeline

import (
	"errors"
	"log/slog"

	"github.com/nao1215/slideshot/internal/canvas"
	"github.com/nao1215/slideshot/internal/classify"
	"github.com/nao1215/slideshot/internal/model"
	"github.com/nao1215/slideshot/internal/segment"
)

// SegmentStep splits the snapshot text into words.
type SegmentStep struct {
	segmenter *segment.Segmenter
	logger    *slog.Logger
}

// NewSegmentStep creates a segmentation step using the given fallback
// strategy.
func NewSegmentStep(fallback segment.Strategy, logger *slog.Logger) *SegmentStep {
	return &SegmentStep{segmenter: segment.New(fallback), logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *SegmentStep) Name() string {
	return "segment"
}

// Do executes the segmentation step.
func (s *SegmentStep) Do(a *Analysis) error {
	a.Words = s.segmenter.Segment(a.Snapshot)
	s.logger.Debug("segmented words",
		"nodes", len(a.Snapshot.Nodes),
		"words", len(a.Words),
		"per_token", a.Snapshot.SupportsPerTokenGeometry,
		"fallback", string(s.segmenter.Fallback()),
	)
	return nil
}

// CanvasStep resolves the canvas bounds. A structural problem does not stop
// the pipeline: it becomes the leading warning and the bounds stay nil.
type CanvasStep struct {
	logger *slog.Logger
}

// NewCanvasStep creates a canvas resolution step.
func NewCanvasStep(logger *slog.Logger) *CanvasStep {
	return &CanvasStep{logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *CanvasStep) Name() string {
	return "canvas"
}

// Do executes the canvas resolution step.
func (s *CanvasStep) Do(a *Analysis) error {
	bounds, err := canvas.Resolve(a.Snapshot)
	if err != nil {
		var structural *model.StructuralError
		if !errors.As(err, &structural) {
			return err
		}
		s.logger.Warn("canvas root unavailable, skipping bounds checks", "error", err)
		a.Bounds = nil
		message := structural.Err.Error()
		if structural.Path != "" {
			message = "canvas " + structural.Path + ": " + message
		}
		a.Warnings = append([]model.Warning{model.NewStructuralWarning(message)}, a.Warnings...)
		return nil
	}

	a.Bounds = bounds
	s.logger.Debug("resolved canvas",
		"path", a.Snapshot.CanvasPath,
		"width", bounds.Width,
		"height", bounds.Height,
	)
	return nil
}

// ClassifyStep detects overflow, clipped and overlap anomalies.
type ClassifyStep struct {
	classifier *classify.Classifier
	logger     *slog.Logger
}

// NewClassifyStep creates a classification step.
func NewClassifyStep(opts classify.Options, logger *slog.Logger) *ClassifyStep {
	return &ClassifyStep{classifier: classify.New(opts), logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classification step.
func (s *ClassifyStep) Do(a *Analysis) error {
	found := s.classifier.Classify(a.Words, a.Bounds)
	a.Warnings = append(a.Warnings, found...)
	s.logger.Debug("classified words", "warnings", len(found))
	return nil
}

// AssembleStep validates the results and builds the report.
type AssembleStep struct{}

// NewAssembleStep creates an assembly step.
func NewAssembleStep() *AssembleStep {
	return &AssembleStep{}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assembly step.
func (s *AssembleStep) Do(a *Analysis) error {
	report, err := model.Assemble(a.Words, a.Bounds, a.Warnings)
	if err != nil {
		return err
	}
	a.Report = report
	return nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Segmentation is the fallback used without per-token geometry.
	Segmentation segment.Strategy

	// Classify holds the classifier thresholds.
	Classify classify.Options
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithSegmentation sets the fallback segmentation strategy.
func WithSegmentation(strategy segment.Strategy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Segmentation = strategy
	}
}

// WithMinVisibleFraction sets the clipped threshold.
func WithMinVisibleFraction(fraction float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Classify.MinVisibleFraction = fraction
	}
}

// WithOverlapMinArea sets the minimum reported overlap area.
func WithOverlapMinArea(area float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Classify.OverlapMinArea = area
	}
}

// DefaultPipeline creates the standard analysis pipeline:
// segment, canvas, classify, assemble.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Segmentation: segment.StrategyProportional,
		Classify:     classify.DefaultOptions(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewSegmentStep(cfg.Segmentation, p.logger),
		NewCanvasStep(p.logger),
		NewClassifyStep(cfg.Classify, p.logger),
		NewAssembleStep(),
	)

	return p
}

// Analyze runs the default pipeline on snap.
func Analyze(snap *model.Snapshot, pipelineOpts []Option, configOpts ...DefaultPipelineOption) (*model.LayoutReport, error) {
	return DefaultPipeline(pipelineOpts, configOpts...).Run(snap)
}
