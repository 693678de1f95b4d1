package entities

import (
	"fmt"
	"strings"
)

// StrategyKind identifies how a candidate selector is interpreted
type StrategyKind string

const (
	ByCSS   StrategyKind = "css"
	ByXPath StrategyKind = "xpath"
	ByText  StrategyKind = "text"
	ByLabel StrategyKind = "label"
	ByRole  StrategyKind = "role"
)

// Strategy is one candidate lookup for a UI target
type Strategy struct {
	Kind StrategyKind `json:"kind"`
	Expr string       `json:"expr"`
	// Name narrows ByRole lookups to an accessible name.
	Name string `json:"name,omitempty"`
	// Exact requests exact text matching for ByText and ByLabel.
	Exact bool `json:"exact,omitempty"`
	// Index selects the n-th match instead of the first one. Only for
	// structurally identical controls; prefer NearLabel.
	Index int `json:"index,omitempty"`
	// Ordinal is set by Nth, so that index 0 also counts as positional.
	Ordinal bool `json:"ordinal,omitempty"`
}

// Positional reports whether the strategy depends on document position
func (s Strategy) Positional() bool {
	return s.Ordinal || s.Index > 0
}

// String renders the strategy the way it shows up in logs and errors
func (s Strategy) String() string {
	var b strings.Builder
	b.WriteString(string(s.Kind))
	b.WriteString("=")
	b.WriteString(s.Expr)
	if s.Name != "" {
		fmt.Fprintf(&b, "[name=%q]", s.Name)
	}
	if s.Exact {
		b.WriteString("[exact]")
	}
	if s.Positional() {
		fmt.Fprintf(&b, ">>nth=%d", s.Index)
	}
	return b.String()
}

// ID - selects an element by its id attribute
func ID(id string) Strategy {
	return Strategy{Kind: ByCSS, Expr: "#" + id}
}

// CSS - selects elements with a raw CSS selector
func CSS(selector string) Strategy {
	return Strategy{Kind: ByCSS, Expr: selector}
}

// Attr - selects elements by attribute value, optionally restricted to a tag
func Attr(tag, name, value string) Strategy {
	return Strategy{Kind: ByCSS, Expr: fmt.Sprintf("%s[%s=%q]", tag, name, value)}
}

// TestID - selects elements by data-testid
func TestID(value string) Strategy {
	return Attr("", "data-testid", value)
}

// Text - selects elements by their text content (substring match)
func Text(text string) Strategy {
	return Strategy{Kind: ByText, Expr: text}
}

// ExactText - selects elements whose full text equals text
func ExactText(text string) Strategy {
	return Strategy{Kind: ByText, Expr: text, Exact: true}
}

// XPath - selects elements with an XPath expression
func XPath(expr string) Strategy {
	return Strategy{Kind: ByXPath, Expr: expr}
}

// Label - selects the form control associated with a label
func Label(text string) Strategy {
	return Strategy{Kind: ByLabel, Expr: text}
}

// Role - selects elements by ARIA role and accessible name
func Role(role, name string) Strategy {
	return Strategy{Kind: ByRole, Expr: role, Name: name}
}

// NearLabel - selects the first control matching controlTag that lives in the
// closest ancestor of a node whose normalized text equals label. This replaces
// positional lookups when several identical controls share a page.
func NearLabel(label, controlTag string) Strategy {
	return XPath(fmt.Sprintf(
		"//*[normalize-space(text())=%s]/ancestor::*[.//%s][1]//%s",
		XPathLiteral(label), controlTag, controlTag,
	))
}

// Nth - returns a copy of s that selects the n-th (zero based) match
func Nth(s Strategy, n int) Strategy {
	s.Index = n
	s.Ordinal = true
	return s
}

// XPathLiteral quotes s for use inside an XPath expression
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}

// Target is a semantic UI element with its ordered candidate strategies,
// most stable first and most generic last.
type Target struct {
	Name       string     `json:"name"`
	Candidates []Strategy `json:"candidates"`
	// Destructive marks targets whose activation changes data irreversibly.
	Destructive bool `json:"destructive,omitempty"`
}

// NewTarget - creates a target from its name and candidate strategies
func NewTarget(name string, candidates ...Strategy) Target {
	return Target{Name: name, Candidates: candidates}
}

// AsDestructive - returns a copy of the target flagged destructive
func (t Target) AsDestructive() Target {
	t.Destructive = true
	return t
}

// Selectors lists the candidate strategies as strings, in order
func (t Target) Selectors() []string {
	out := make([]string, 0, len(t.Candidates))
	for _, c := range t.Candidates {
		out = append(out, c.String())
	}
	return out
}

func (t Target) String() string {
	return t.Name
}
