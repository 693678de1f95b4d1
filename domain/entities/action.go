package entities

import "time"

// ActionType represents the type of interaction performed on a target
type ActionType string

const (
	ActionClick    ActionType = "click"
	ActionFill     ActionType = "fill"
	ActionSelect   ActionType = "select"
	ActionPick     ActionType = "pick"
	ActionCheck    ActionType = "check"
	ActionUncheck  ActionType = "uncheck"
	ActionUpload   ActionType = "upload"
	ActionPress    ActionType = "press"
	ActionNavigate ActionType = "navigate"
)

// Action represents a single interaction described as data
type Action struct {
	Type   ActionType `json:"type"`
	Target Target     `json:"target"`
	// Value carries the fill text, option, key or URL depending on Type.
	Value string   `json:"value,omitempty"`
	Files []string `json:"files,omitempty"`
	// Panel and Option are used by ActionPick: the overlay that opens and
	// the option inside it.
	Panel  *Target `json:"panel,omitempty"`
	Option *Target `json:"option,omitempty"`
}

// ActionResult represents the outcome of an action, consumed by the step
// that issued it
type ActionResult struct {
	Action       ActionType    `json:"action"`
	Target       string        `json:"target"`
	Attempted    bool          `json:"attempted"`
	Succeeded    bool          `json:"succeeded"`
	Strategy     string        `json:"strategy,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration"`
}
