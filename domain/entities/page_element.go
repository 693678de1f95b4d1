package entities

import "fmt"

// PageElement is a visible interactive element reported by page diagnostics
type PageElement struct {
	Type        string `json:"type"`     // button, a, input, select...
	Selector    string `json:"selector"` // best unique CSS selector
	Text        string `json:"text"`     // visible text, value or placeholder
	IsVisible   bool   `json:"is_visible"`
	IsClickable bool   `json:"is_clickable"`
}

// Hint formats the element for inclusion in error messages
func (e PageElement) Hint() string {
	if e.Text == "" {
		return e.Selector
	}
	return fmt.Sprintf("%s (%s)", e.Selector, e.Text)
}
