package constants

// UpsertOutcome is the result of reconciling one observation against the store.
type UpsertOutcome string

// Stable values (used as metric labels and in run summaries).
const (
	OutcomeCreated   UpsertOutcome = "CREATED"
	OutcomeUpdated   UpsertOutcome = "UPDATED"
	OutcomeUnchanged UpsertOutcome = "UNCHANGED" // counted as skipped
	OutcomeFailed    UpsertOutcome = "FAILED"
)

// RunStatus is the terminal state of an orchestrator run.
type RunStatus string

const (
	RunStatusOK       RunStatus = "OK"
	RunStatusPartial  RunStatus = "PARTIAL"  // some files or batches failed
	RunStatusEmpty    RunStatus = "EMPTY"    // base directory missing or no sources
	RunStatusCanceled RunStatus = "CANCELED" // context canceled mid-run
)
