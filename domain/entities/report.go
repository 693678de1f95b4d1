package entities

import "time"

// Status represents the state of a scenario or step in a run
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records one Resolve->Act->Verify step of a scenario
type StepResult struct {
	Name       string        `json:"name"`
	Status     Status        `json:"status"`
	Optional   bool          `json:"optional,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Page       *PageInfo     `json:"page,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// ScenarioResult groups the steps of one scenario
type ScenarioResult struct {
	Name     string        `json:"name"`
	Portal   string        `json:"portal"`
	Status   Status        `json:"status"`
	Steps    []StepResult  `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Report is the persisted outcome of one CLI run
type Report struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// Passed reports whether every scenario in the run passed
func (r Report) Passed() bool {
	for _, s := range r.Scenarios {
		if s.Status != StatusPassed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed, failed and skipped scenarios
func (r Report) Counts() (passed, failed, skipped int) {
	for _, s := range r.Scenarios {
		switch s.Status {
		case StatusPassed:
			passed++
		case StatusSkipped:
			skipped++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}
