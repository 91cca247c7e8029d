package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
)

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

type bestEffortStep struct {
	Step
}

// BestEffort marks s as non-critical: when it fails the failure is recorded
// in the Report and the saga log, the saga keeps going, and nothing is
// compensated.
func BestEffort(s Step) Step {
	return bestEffortStep{Step: s}
}

func isBestEffort(s Step) bool {
	_, ok := s.(bestEffortStep)
	return ok
}

// StepFailure is a best-effort step that did not succeed.
type StepFailure struct {
	Step string
	Err  error
}

// Report summarizes a saga that was not aborted.
type Report struct {
	Degraded []StepFailure
}

// IsDegraded reports whether any best-effort step failed.
func (r Report) IsDegraded() bool { return len(r.Degraded) > 0 }

// ErrSagaExists is returned by Start when the saga log already holds
// entries for the saga ID. Nothing is executed or recorded.
var ErrSagaExists = errors.New("coordinator: saga id already used")

// Orchestrator manages the execution of a collection of Steps and records
// every transition in the saga log.
type Orchestrator struct {
	sagaID  string
	steps   []Step
	repo    sagalog.Repository // nil-safe: logging skipped if nil
	payload string
}

func NewOrchestrator(sagaID string, steps []Step, repo sagalog.Repository) *Orchestrator {
	return &Orchestrator{sagaID: sagaID, steps: steps, repo: repo}
}

// WithPayload stores v as the JSON input of the saga on its STARTED entry.
func (o *Orchestrator) WithPayload(v any) *Orchestrator {
	if b, err := json.Marshal(v); err == nil {
		o.payload = string(b)
	}
	return o
}

// Start runs the saga steps sequentially.
// If a critical step fails, it triggers the compensation of all previously
// successful steps and returns the step error.
func (o *Orchestrator) Start(ctx context.Context) (Report, error) {
	var (
		successfulSteps []Step
		report          Report
		errs            []string
	)

	if o.repo != nil {
		_, err := o.repo.GetLatest(ctx, o.sagaID)
		switch {
		case err == nil:
			slog.WarnContext(ctx, "saga id already has a history, not starting", "saga_id", o.sagaID)
			return report, ErrSagaExists
		case !errors.Is(err, sagalog.ErrNotFound):
			slog.ErrorContext(ctx, "failed to look up saga log", "saga_id", o.sagaID, "error", err)
		}
	}

	o.record(ctx, sagalog.StatusStarted, "", o.payload, nil)

	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			msg := fmt.Sprintf("step %s failed: %v", step.Name(), err)
			errs = append(errs, msg)

			if isBestEffort(step) {
				slog.WarnContext(ctx, "best-effort saga step failed", "saga_id", o.sagaID, "step", step.Name(), "error", err)
				report.Degraded = append(report.Degraded, StepFailure{Step: step.Name(), Err: err})
				o.record(ctx, sagalog.StatusStepFailed, step.Name(), "", errs)
				continue
			}

			slog.ErrorContext(ctx, "saga step failed, starting rollback", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			o.record(ctx, sagalog.StatusCompensating, step.Name(), "", errs)
			errs = o.rollback(ctx, successfulSteps, errs)
			o.record(ctx, sagalog.StatusFailed, step.Name(), "", errs)
			return report, err
		}
		// Track successful step for potential compensation (LIFO)
		successfulSteps = append(successfulSteps, step)
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
	}

	if report.IsDegraded() {
		slog.WarnContext(ctx, "saga completed with errors", "saga_id", o.sagaID, "failed_steps", len(report.Degraded))
		o.record(ctx, sagalog.StatusDegraded, "", "", errs)
		return report, nil
	}

	slog.InfoContext(ctx, "saga completed successfully", "saga_id", o.sagaID)
	o.record(ctx, sagalog.StatusCompleted, "", "", nil)
	return report, nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step, errs []string) []string {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	if o.repo == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.sagaID, status, step, payload, errs)
	if err := o.repo.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist saga log entry", "saga_id", o.sagaID, "status", status, "error", err)
	}
}
