package trigger

import (
	"fmt"
	"sync/atomic"
)

// Active holds the rule set currently in force and swaps it wholesale on
// reload. Callers that Load a snapshot keep using it even if a reload
// happens meanwhile.
type Active struct {
	path  string
	opts  Options
	rules atomic.Pointer[RuleSet]
}

// NewActive compiles the trigger file at path. A compile error is returned
// unchanged so the caller can refuse to start.
func NewActive(path string, opts Options) (*Active, error) {
	a := &Active{path: path, opts: opts}
	if err := a.Reload(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewActiveRules wraps an already compiled rule set. Reload is unavailable
// on the result.
func NewActiveRules(rules RuleSet) *Active {
	a := &Active{}
	a.Store(rules)
	return a
}

// Load returns the current rule set.
func (a *Active) Load() RuleSet {
	if rs := a.rules.Load(); rs != nil {
		return *rs
	}
	return nil
}

// Store replaces the current rule set.
func (a *Active) Store(rules RuleSet) {
	a.rules.Store(&rules)
}

// Path returns the trigger file this rule set is compiled from.
func (a *Active) Path() string {
	return a.path
}

// Reload recompiles the trigger file. On failure the previous rule set
// stays in force.
func (a *Active) Reload() error {
	if a.path == "" {
		return fmt.Errorf("reload: no trigger file configured")
	}
	rules, err := CompileFile(a.path, a.opts)
	if err != nil {
		return err
	}
	a.Store(rules)
	return nil
}
