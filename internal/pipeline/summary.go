package pipeline

import (
	"time"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
)

// RunSummary is the tally of one orchestrator run. Record counts only include
// committed work; observations lost to failed batches are counted in Errors.
type RunSummary struct {
	RunID      string              `json:"run_id"`
	BaseDir    string              `json:"base_dir"`
	Status     constants.RunStatus `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`

	FilesScanned int `json:"files_scanned"`
	FilesParsed  int `json:"files_parsed"`
	FilesFailed  int `json:"files_failed"`
	Rows         int `json:"rows"`
	Candidates   int `json:"candidates"`
	Duplicates   int `json:"duplicates"`

	Created       int  `json:"created"`
	Updated       int  `json:"updated"`
	Skipped       int  `json:"skipped"`
	Errors        int  `json:"errors"`
	CommitRetries int  `json:"commit_retries"`
	LimitReached  bool `json:"limit_reached"`
}

// Processed is the number of observations the store accepted.
func (s RunSummary) Processed() int { return s.Created + s.Updated + s.Skipped }

func (s RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// LogAttrs flattens the summary for slog.
func (s RunSummary) LogAttrs() []any {
	return []any{
		"run_id", s.RunID,
		"status", s.Status,
		"files_scanned", s.FilesScanned,
		"files_parsed", s.FilesParsed,
		"files_failed", s.FilesFailed,
		"rows", s.Rows,
		"candidates", s.Candidates,
		"duplicates", s.Duplicates,
		"created", s.Created,
		"updated", s.Updated,
		"skipped", s.Skipped,
		"errors", s.Errors,
		"commit_retries", s.CommitRetries,
		"limit_reached", s.LimitReached,
		"elapsed_ms", s.Elapsed().Milliseconds(),
	}
}

func (s *RunSummary) finish(status constants.RunStatus) {
	s.Status = status
	s.FinishedAt = time.Now().UTC()
}

// tally counts outcomes of one batch until it commits.
type tally struct {
	created, updated, skipped int
}

func (t *tally) add(o constants.UpsertOutcome) {
	switch o {
	case constants.OutcomeCreated:
		t.created++
	case constants.OutcomeUpdated:
		t.updated++
	case constants.OutcomeUnchanged:
		t.skipped++
	}
}

func (t tally) mergeInto(s *RunSummary) {
	s.Created += t.created
	s.Updated += t.updated
	s.Skipped += t.skipped
	recordCommitted(t.created, t.updated, t.skipped)
}
