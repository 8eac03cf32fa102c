package worker

import "context"

// EvalJobCreator is the opaque business function C6 invokes once a trace
// has been upserted: deciding which evaluation jobs (if any) a trace
// matches against configured evaluators and enqueuing them (spec §1: the
// "what evaluators run and how they score" business logic is out of scope;
// only the queueing/worker mechanics around it are specified).
type EvalJobCreator interface {
	CreateEvalJobs(ctx context.Context, projectID, traceID string) error
}

// Evaluator is the opaque business function C7 invokes to execute one
// evaluation job (spec §1, same scope boundary).
type Evaluator interface {
	Evaluate(ctx context.Context, projectID, jobExecutionID string) error
}

// NoopEvalJobCreator is the default EvalJobCreator wired when no real
// evaluator configuration is present, keeping the queue mechanics testable
// independent of business rules.
type NoopEvalJobCreator struct{}

func (NoopEvalJobCreator) CreateEvalJobs(ctx context.Context, projectID, traceID string) error {
	return nil
}

// NoopEvaluator is the default Evaluator wired when no real evaluation
// logic is present.
type NoopEvaluator struct{}

func (NoopEvaluator) Evaluate(ctx context.Context, projectID, jobExecutionID string) error {
	return nil
}
