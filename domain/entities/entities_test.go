package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategy_String(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		want     string
	}{
		{"id", ID("serverList"), "css=#serverList"},
		{"attr", Attr("input", "name", "subject"), `css=input[name="subject"]`},
		{"test id", TestID("submit"), `css=[data-testid="submit"]`},
		{"exact text", ExactText("Search"), "text=Search[exact]"},
		{"role", Role("button", "Log in"), `role=button[name="Log in"]`},
		{"nth", Nth(CSS("input.date-range"), 2), "css=input.date-range>>nth=2"},
		{"nth zero", Nth(CSS("input.date-range"), 0), "css=input.date-range>>nth=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.String())
		})
	}
}

func TestStrategy_Positional(t *testing.T) {
	assert.False(t, CSS("input").Positional())
	assert.False(t, NearLabel("Renewal", "input").Positional())
	assert.True(t, Nth(CSS("input"), 0).Positional())
	assert.True(t, Nth(CSS("input"), 3).Positional())
}

func TestNearLabel_Quoting(t *testing.T) {
	assert.Equal(t,
		"xpath=//*[normalize-space(text())='Renewal']/ancestor::*[.//input][1]//input",
		NearLabel("Renewal", "input").String())
	assert.Contains(t, NearLabel("Customer's plan", "button").Expr, `"Customer's plan"`)
	assert.Contains(t, NearLabel(`It's "new"`, "button").Expr, `concat('It', "'", 's "new"')`)
}

func TestTarget(t *testing.T) {
	target := NewTarget("Cancel button", ID("cancel"), Role("button", "Cancel"))
	assert.False(t, target.Destructive)
	assert.True(t, target.AsDestructive().Destructive)
	assert.False(t, target.Destructive, "AsDestructive must not modify the receiver")
	assert.Equal(t, []string{"css=#cancel", `role=button[name="Cancel"]`}, target.Selectors())
	assert.Equal(t, "Cancel button", target.String())
}

func TestWaitPolicy_Validate(t *testing.T) {
	assert.NoError(t, WaitPolicy{Timeout: time.Second, PollInterval: 100 * time.Millisecond}.Validate())

	for _, p := range []WaitPolicy{
		{Timeout: time.Second, PollInterval: time.Second},
		{Timeout: 100 * time.Millisecond, PollInterval: time.Second},
		{Timeout: time.Second},
		{},
	} {
		assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy, "%+v", p)
	}

	p := WaitPolicy{Timeout: time.Second, PollInterval: 10 * time.Millisecond}.WithTimeout(3 * time.Second)
	assert.Equal(t, 3*time.Second, p.Timeout)
	assert.Equal(t, 10*time.Millisecond, p.PollInterval)
}

func TestActionError(t *testing.T) {
	err := &ActionError{
		Action: ActionClick,
		Target: "Search button",
		Step:   "apply",
		Tried:  []string{"css=#search-btn", `role=button[name="Search"]`},
		Hints:  []string{"button.search (Find)"},
		Err:    ErrElementNotFound,
	}

	assert.Equal(t,
		`click "Search button": step "apply": element not found (tried: css=#search-btn, role=button[name="Search"]); similar elements: button.search (Find)`,
		err.Error())
	assert.ErrorIs(t, err, ErrElementNotFound)

	var target *ActionError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, "apply", target.Step)
}

func TestReport_Counts(t *testing.T) {
	report := Report{Scenarios: []ScenarioResult{
		{Status: StatusPassed},
		{Status: StatusSkipped},
		{Status: StatusFailed},
		{Status: StatusRunning},
	}}

	passed, failed, skipped := report.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, skipped)
	assert.False(t, report.Passed())

	assert.True(t, Report{Scenarios: []ScenarioResult{{Status: StatusPassed}}}.Passed())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "error", Failed.String())
}

func TestPageElement_Hint(t *testing.T) {
	assert.Equal(t, "#search-btn (Search)", PageElement{Selector: "#search-btn", Text: "Search"}.Hint())
	assert.Equal(t, "#icon-only", PageElement{Selector: "#icon-only"}.Hint())
}
