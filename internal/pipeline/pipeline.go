package pipeline

import (
	"log/slog"

	"github.com/nao1215/slideshot/internal/model"
)

// Analysis is the state shared by the pipeline steps for one snapshot.
type Analysis struct {
	// Snapshot is the rendered page. Steps must not modify it.
	Snapshot *model.Snapshot

	// Words is filled in by the segmentation step.
	Words []model.Word

	// Bounds is filled in by the canvas step. It stays nil when the
	// canvas root could not be resolved.
	Bounds *model.CanvasBounds

	// Warnings accumulates the warnings of every step.
	Warnings []model.Warning

	// Report is filled in by the assembly step.
	Report *model.LayoutReport

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string
}

// NewAnalysis creates an Analysis for the given snapshot.
func NewAnalysis(snap *model.Snapshot) *Analysis {
	return &Analysis{
		Snapshot: snap,
		Warnings: []model.Warning{},
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the analysis
// state produced by the previous ones.
type Step interface {
	// Do executes the step. Recoverable problems are recorded in the
	// analysis; a returned error aborts the pipeline.
	Do(a *Analysis) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first error.
func (p *Pipeline) Execute(a *Analysis) error {
	for _, step := range p.steps {
		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(a); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"words", len(a.Words),
			"warnings", len(a.Warnings),
		)
		a.PerformedSteps = append(a.PerformedSteps, step.Name())
	}

	return nil
}

// Run executes the pipeline on snap and returns the assembled report.
func (p *Pipeline) Run(snap *model.Snapshot) (*model.LayoutReport, error) {
	if snap == nil {
		return nil, &model.InternalConsistencyError{Invariant: "snapshot", Detail: "no snapshot to analyze"}
	}

	a := NewAnalysis(snap)
	if err := p.Execute(a); err != nil {
		return nil, err
	}
	if a.Report == nil {
		return nil, &model.InternalConsistencyError{Invariant: "report", Detail: "pipeline finished without assembling a report"}
	}
	return a.Report, nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
