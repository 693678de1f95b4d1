package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// fakeNode is one DOM node of the in-memory page
type fakeNode struct {
	mu sync.Mutex

	hidden       bool
	visibleAfter int // IsVisible calls before the node shows up
	visibleCalls int
	checked      bool
	text         string
	value        string
	clicks       int
	scrolled     int
	clickErrs    []error
	onClick      func()
	selected     string
	files        []string
	children     map[string][]*fakeNode
}

func (n *fakeNode) visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visibleCalls++
	return !n.hidden && n.visibleCalls > n.visibleAfter
}

func (n *fakeNode) setHidden(hidden bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hidden = hidden
}

func (n *fakeNode) setText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
}

func (n *fakeNode) clickCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clicks
}

func (n *fakeNode) add(s entities.Strategy, children ...*fakeNode) *fakeNode {
	if n.children == nil {
		n.children = map[string][]*fakeNode{}
	}
	n.children[fakeKey(s)] = append(n.children[fakeKey(s)], children...)
	return n
}

// fakeKey drops the index; Locate ignores it the way the real adapter does
func fakeKey(s entities.Strategy) string {
	s.Index, s.Ordinal = 0, false
	return s.String()
}

// fakeElement is a lazy handle over matching fake nodes
type fakeElement struct {
	page  *fakePage
	desc  string
	nodes []*fakeNode
	idx   int
	// narrowed is set once First or Nth picked a single node
	narrowed bool
	err      error
}

func (e *fakeElement) node() *fakeNode {
	if e.idx < len(e.nodes) {
		return e.nodes[e.idx]
	}
	return nil
}

func (e *fakeElement) check() error {
	if e.page.isClosed() {
		return entities.ErrPageClosed
	}
	return e.err
}

func (e *fakeElement) Locate(s entities.Strategy) interfaces.Element {
	var nodes []*fakeNode
	if n := e.node(); n != nil {
		nodes = n.children[fakeKey(s)]
	}
	return &fakeElement{page: e.page, desc: e.desc + " >> " + s.String(), nodes: nodes}
}

func (e *fakeElement) First() interfaces.Element {
	return e.Nth(0)
}

func (e *fakeElement) Nth(n int) interfaces.Element {
	return &fakeElement{page: e.page, desc: e.desc, nodes: e.nodes, idx: n, narrowed: true, err: e.err}
}

func (e *fakeElement) Count() (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	if e.narrowed {
		if e.node() != nil {
			return 1, nil
		}
		return 0, nil
	}
	return len(e.nodes), nil
}

func (e *fakeElement) IsVisible() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	n := e.node()
	return n != nil && n.visible(), nil
}

func (e *fakeElement) IsEnabled() (bool, error) {
	return e.node() != nil, e.check()
}

func (e *fakeElement) IsChecked() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	n := e.node()
	if n == nil {
		return false, entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.checked, nil
}

func (e *fakeElement) ScrollIntoView(time.Duration) error {
	if n := e.node(); n != nil {
		n.mu.Lock()
		n.scrolled++
		n.mu.Unlock()
	}
	return e.check()
}

func (e *fakeElement) Click(time.Duration) error {
	if err := e.check(); err != nil {
		return err
	}
	n := e.node()
	if n == nil {
		return entities.ErrTimeout
	}
	n.mu.Lock()
	n.clicks++
	if len(n.clickErrs) > 0 {
		err := n.clickErrs[0]
		n.clickErrs = n.clickErrs[1:]
		n.mu.Unlock()
		return err
	}
	onClick := n.onClick
	n.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *fakeElement) Fill(value string, _ time.Duration) error {
	if err := e.check(); err != nil {
		return err
	}
	n := e.node()
	if n == nil {
		return entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = value
	return nil
}

func (e *fakeElement) SelectOption(value string, _ time.Duration) error {
	if err := e.check(); err != nil {
		return err
	}
	n := e.node()
	if n == nil {
		return entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = value
	n.value = value
	return nil
}

func (e *fakeElement) SetInputFiles(paths []string, _ time.Duration) error {
	if err := e.check(); err != nil {
		return err
	}
	n := e.node()
	if n == nil {
		return entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.files = append([]string(nil), paths...)
	return nil
}

func (e *fakeElement) Text() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	n := e.node()
	if n == nil {
		return "", entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text, nil
}

func (e *fakeElement) InputValue() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	n := e.node()
	if n == nil {
		return "", entities.ErrTimeout
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value, nil
}

func (e *fakeElement) Describe() string {
	return e.desc
}

// fakePage is an in-memory page keyed by strategy strings
type fakePage struct {
	mu       sync.Mutex
	nodes    map[string][]*fakeNode
	errs     map[string]error
	keys     []string
	onKey    func(key string)
	closed   bool
	elements []entities.PageElement
	url      string
}

func newFakePage() *fakePage {
	return &fakePage{nodes: map[string][]*fakeNode{}, errs: map[string]error{}}
}

func (p *fakePage) add(s entities.Strategy, nodes ...*fakeNode) *fakePage {
	p.nodes[fakeKey(s)] = append(p.nodes[fakeKey(s)], nodes...)
	return p
}

func (p *fakePage) fail(s entities.Strategy, err error) *fakePage {
	p.errs[fakeKey(s)] = err
	return p
}

func (p *fakePage) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) pressed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func (p *fakePage) Locate(s entities.Strategy) interfaces.Element {
	return &fakeElement{page: p, desc: s.String(), nodes: p.nodes[fakeKey(s)], err: p.errs[fakeKey(s)]}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	return nil
}

func (p *fakePage) PressKey(_ context.Context, key string) error {
	p.mu.Lock()
	p.keys = append(p.keys, key)
	onKey := p.onKey
	p.mu.Unlock()
	if onKey != nil {
		onKey(key)
	}
	return nil
}

func (p *fakePage) WaitForIdle(time.Duration) {}

func (p *fakePage) Info() (entities.PageInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return entities.PageInfo{URL: p.url, Title: "fake"}, nil
}

func (p *fakePage) InteractiveElements(context.Context) ([]entities.PageElement, error) {
	return p.elements, nil
}

func (p *fakePage) Screenshot(string) error { return nil }

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

var testPolicy = entities.WaitPolicy{Timeout: 80 * time.Millisecond, PollInterval: 5 * time.Millisecond}

// fakeGuard blocks every action on destructive targets
type fakeGuard struct{}

func (fakeGuard) IsDestructiveAction(_ context.Context, a entities.Action) bool {
	return a.Target.Destructive
}

func (g fakeGuard) GetActionRiskLevel(ctx context.Context, a entities.Action) interfaces.RiskLevel {
	if g.IsDestructiveAction(ctx, a) {
		return interfaces.RiskHigh
	}
	return interfaces.RiskLow
}

func (g fakeGuard) Allow(ctx context.Context, a entities.Action) error {
	if g.IsDestructiveAction(ctx, a) {
		return entities.ErrBlocked
	}
	return nil
}

func newTestKit(t *testing.T) (*Kit, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	kit, err := NewKit(logger, fakeGuard{}, Options{
		Lookup:        testPolicy,
		ActionTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return kit, hook
}
