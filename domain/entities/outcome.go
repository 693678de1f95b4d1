package entities

// Outcome is the tri-state result of a lookup or a polled predicate
type Outcome int

const (
	// NotFound - the expected state did not show up within the timeout
	NotFound Outcome = iota
	// Found - the expected state was observed
	Found
	// Failed - the browser or page failed; not an optional state
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Failed:
		return "error"
	default:
		return "not_found"
	}
}
