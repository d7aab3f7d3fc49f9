package trigger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"newswatch/internal/model"
)

// Comment prefixes recognized at the start of a trigger file line.
var commentPrefixes = []string{"//", "#"}

// Date-time layouts that carry their own offset, tried in order.
var zonedLayouts = []string{
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// localLayout is resolved in Options.Location.
const localLayout = "2 Jan 2006 15:04:05"

// Options controls compilation.
type Options struct {
	// Location resolves date-times written without an offset.
	// When nil such date-times are rejected with a TimeZoneError.
	Location *time.Location
}

// Rule is a top-level predicate together with where it was defined.
type Rule struct {
	Name      string
	Line      int
	Predicate Predicate
}

// RuleSet is an ordered list of rules that an item must all satisfy.
type RuleSet []Rule

// Match reports whether item satisfies every rule. An empty set matches
// every item.
func (rs RuleSet) Match(item model.Item) bool {
	for _, r := range rs {
		if !Evaluate(r.Predicate, item) {
			return false
		}
	}
	return true
}

type directive struct {
	minArgs int
	maxArgs int // -1 for unbounded
	build   func(c *compiler, args []string) (Predicate, error)
}

// directives maps each keyword to its constructor. A line whose first
// field is not a keyword binds a name: "name, KEYWORD, args...".
var directives = map[string]directive{
	"TITLE":       {minArgs: 1, maxArgs: 1, build: phraseDirective("title")},
	"DESCRIPTION": {minArgs: 1, maxArgs: 1, build: phraseDirective("description")},
	"BEFORE":      {minArgs: 1, maxArgs: 1, build: beforeDirective},
	"AFTER":       {minArgs: 1, maxArgs: 1, build: afterDirective},
	"AND":         {minArgs: 2, maxArgs: -1, build: foldDirective(func(l, r Predicate) Predicate { return And{Left: l, Right: r} })},
	"OR":          {minArgs: 2, maxArgs: -1, build: foldDirective(func(l, r Predicate) Predicate { return Or{Left: l, Right: r} })},
	"NOT":         {minArgs: 1, maxArgs: 1, build: notDirective},
	"ADD":         {minArgs: 1, maxArgs: -1, build: addDirective},
}

type entry struct {
	rule       Rule
	referenced bool
	promoted   bool
}

type compiler struct {
	opts    Options
	names   map[string]*entry
	entries []*entry
}

// Compile parses a trigger file and returns its rule set.
// Compilation stops at the first bad line and returns a *ConfigError;
// no partial rule set is ever returned.
func Compile(r io.Reader, opts Options) (RuleSet, error) {
	c := &compiler{opts: opts, names: make(map[string]*entry)}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || isComment(line) {
			continue
		}
		if err := c.compileLine(lineNo, line); err != nil {
			return nil, &ConfigError{Line: lineNo, Text: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trigger file: %w", err)
	}

	rules := make(RuleSet, 0, len(c.entries))
	for _, e := range c.entries {
		if e.rule.Name == "" || !e.referenced || e.promoted {
			rules = append(rules, e.rule)
		}
	}
	return rules, nil
}

// CompileFile compiles the trigger file at path.
func CompileFile(path string, opts Options) (RuleSet, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open trigger file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rules, err := Compile(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func isComment(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func (c *compiler) compileLine(lineNo int, line string) error {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 2 {
		return ErrTooFewFields
	}

	name := ""
	keyword := strings.ToUpper(fields[0])
	args := fields[1:]
	d, ok := directives[keyword]
	if !ok {
		if _, ok := directives[strings.ToUpper(fields[1])]; !ok {
			return fmt.Errorf("%w %q", ErrUnknownKeyword, fields[0])
		}
		name = fields[0]
		keyword = strings.ToUpper(fields[1])
		args = fields[2:]
		d = directives[keyword]
		if err := c.checkName(name); err != nil {
			return err
		}
		if keyword == "ADD" {
			return ErrNamedAdd
		}
	}

	if len(args) < d.minArgs || (d.maxArgs >= 0 && len(args) > d.maxArgs) {
		return fmt.Errorf("%w: %s takes %s, got %d", ErrArity, keyword, arityText(d), len(args))
	}

	p, err := d.build(c, args)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	e := &entry{rule: Rule{Name: name, Line: lineNo, Predicate: p}}
	c.entries = append(c.entries, e)
	if name != "" {
		c.names[name] = e
	}
	return nil
}

func (c *compiler) checkName(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case c.names[name] != nil:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

// resolve looks up a named binding and marks it as used by a combinator.
func (c *compiler) resolve(name string) (Predicate, error) {
	e, ok := c.names[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnresolvedName, name)
	}
	e.referenced = true
	return e.rule.Predicate, nil
}

func arityText(d directive) string {
	switch {
	case d.maxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", d.minArgs)
	case d.minArgs == 1 && d.maxArgs == 1:
		return "exactly 1 argument"
	}
	return fmt.Sprintf("%d-%d arguments", d.minArgs, d.maxArgs)
}

func phraseDirective(field string) func(*compiler, []string) (Predicate, error) {
	return func(_ *compiler, args []string) (Predicate, error) {
		words := Words(args[0])
		if len(words) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyPhrase, args[0])
		}
		return Phrase{Words: words, Field: field}, nil
	}
}

func beforeDirective(c *compiler, args []string) (Predicate, error) {
	t, err := parseInstant(args[0], c.opts.Location)
	if err != nil {
		return nil, err
	}
	return Before{Instant: t}, nil
}

// afterDirective is the complement of BEFORE, so an item published exactly
// at the instant matches AFTER and not BEFORE.
func afterDirective(c *compiler, args []string) (Predicate, error) {
	p, err := beforeDirective(c, args)
	if err != nil {
		return nil, err
	}
	return Not{Inner: p}, nil
}

func foldDirective(join func(l, r Predicate) Predicate) func(*compiler, []string) (Predicate, error) {
	return func(c *compiler, args []string) (Predicate, error) {
		acc, err := c.resolve(args[0])
		if err != nil {
			return nil, err
		}
		for _, name := range args[1:] {
			p, err := c.resolve(name)
			if err != nil {
				return nil, err
			}
			acc = join(acc, p)
		}
		return acc, nil
	}
}

func notDirective(c *compiler, args []string) (Predicate, error) {
	p, err := c.resolve(args[0])
	if err != nil {
		return nil, err
	}
	return Not{Inner: p}, nil
}

func addDirective(c *compiler, args []string) (Predicate, error) {
	for _, name := range args {
		e, ok := c.names[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnresolvedName, name)
		}
		e.promoted = true
	}
	return nil, nil
}

func parseInstant(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if _, err := time.Parse(localLayout, s); err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrBadDateTime, s)
	}
	if loc == nil {
		return time.Time{}, &TimeZoneError{Value: s}
	}
	return time.ParseInLocation(localLayout, s, loc)
}
