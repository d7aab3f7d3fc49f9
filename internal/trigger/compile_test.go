package trigger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"newswatch/internal/model"
)

func TestCompile(t *testing.T) {
	deadline := time.Date(2016, time.October, 3, 17, 0, 10, 0, est)

	tests := []struct {
		name   string
		config string
		want   RuleSet
	}{
		{
			name:   "title phrase",
			config: "TITLE, stock market",
			want: RuleSet{
				{Line: 1, Predicate: Phrase{Words: []string{"stock", "market"}, Field: "title"}},
			},
		},
		{
			name:   "description phrase is normalized",
			config: "DESCRIPTION,   Stock-Market  ",
			want: RuleSet{
				{Line: 1, Predicate: Phrase{Words: []string{"stock", "market"}, Field: "description"}},
			},
		},
		{
			name:   "keywords are case insensitive",
			config: "title, crash",
			want: RuleSet{
				{Line: 1, Predicate: Phrase{Words: []string{"crash"}, Field: "title"}},
			},
		},
		{
			name: "comments and blank lines skipped",
			config: `// trigger file

# alternate comment
TITLE, election

DESCRIPTION, ohio`,
			want: RuleSet{
				{Line: 4, Predicate: Phrase{Words: []string{"election"}, Field: "title"}},
				{Line: 6, Predicate: Phrase{Words: []string{"ohio"}, Field: "description"}},
			},
		},
		{
			name:   "before in configured location",
			config: "BEFORE, 3 Oct 2016 17:00:10",
			want:   RuleSet{{Line: 1, Predicate: Before{Instant: deadline}}},
		},
		{
			name:   "after is the complement of before",
			config: "AFTER, 3 Oct 2016 17:00:10",
			want:   RuleSet{{Line: 1, Predicate: Not{Inner: Before{Instant: deadline}}}},
		},
		{
			name:   "explicit offset wins over location",
			config: "BEFORE, 3 Oct 2016 18:00:10 -0400",
			want:   RuleSet{{Line: 1, Predicate: Before{Instant: deadline}}},
		},
		{
			name:   "rfc3339",
			config: "BEFORE, 2016-10-03T22:00:10Z",
			want:   RuleSet{{Line: 1, Predicate: Before{Instant: deadline}}},
		},
		{
			name: "referenced names are consumed",
			config: `t1, TITLE, election
t2, DESCRIPTION, ohio
t3, AND, t1, t2`,
			want: RuleSet{
				{Name: "t3", Line: 3, Predicate: And{
					Left:  Phrase{Words: []string{"election"}, Field: "title"},
					Right: Phrase{Words: []string{"ohio"}, Field: "description"},
				}},
			},
		},
		{
			name: "or folds left",
			config: `a, TITLE, a
b, TITLE, b
c, TITLE, c
OR, a, b, c`,
			want: RuleSet{
				{Line: 4, Predicate: Or{
					Left: Or{
						Left:  Phrase{Words: []string{"a"}, Field: "title"},
						Right: Phrase{Words: []string{"b"}, Field: "title"},
					},
					Right: Phrase{Words: []string{"c"}, Field: "title"},
				}},
			},
		},
		{
			name: "unreferenced names are top level",
			config: `t1, TITLE, election
TITLE, ohio`,
			want: RuleSet{
				{Name: "t1", Line: 1, Predicate: Phrase{Words: []string{"election"}, Field: "title"}},
				{Line: 2, Predicate: Phrase{Words: []string{"ohio"}, Field: "title"}},
			},
		},
		{
			name: "add promotes referenced names once",
			config: `t1, TITLE, election
t2, NOT, t1
ADD, t1, t2
ADD, t1`,
			want: RuleSet{
				{Name: "t1", Line: 1, Predicate: Phrase{Words: []string{"election"}, Field: "title"}},
				{Name: "t2", Line: 2, Predicate: Not{Inner: Phrase{Words: []string{"election"}, Field: "title"}}},
			},
		},
		{
			name:   "only comments",
			config: "// nothing\n\n",
			want:   RuleSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(strings.NewReader(tt.config), Options{Location: est})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		wantErr  error
		wantLine int
	}{
		{name: "single field", config: "TITLE", wantErr: ErrTooFewFields, wantLine: 1},
		{name: "unknown keyword", config: "SUBJECT, election", wantErr: ErrUnknownKeyword, wantLine: 1},
		{name: "unknown keyword after name", config: "t1, SUBJECT, election", wantErr: ErrUnknownKeyword, wantLine: 1},
		{name: "extra phrase field", config: "TITLE, stock, market", wantErr: ErrArity, wantLine: 1},
		{name: "named without args", config: "t1, TITLE", wantErr: ErrArity, wantLine: 1},
		{name: "and with one operand", config: "t1, TITLE, a\nAND, t1", wantErr: ErrArity, wantLine: 2},
		{name: "not with two operands", config: "t1, TITLE, a\nt2, TITLE, b\nNOT, t1, t2", wantErr: ErrArity, wantLine: 3},
		{name: "empty phrase", config: "TITLE, ?!", wantErr: ErrEmptyPhrase, wantLine: 1},
		{name: "bad date", config: "BEFORE, yesterday", wantErr: ErrBadDateTime, wantLine: 1},
		{name: "unresolved name", config: "t1, TITLE, a\nAND, t1, t2", wantErr: ErrUnresolvedName, wantLine: 2},
		{name: "forward reference", config: "NOT, t1\nt1, TITLE, a", wantErr: ErrUnresolvedName, wantLine: 1},
		{name: "unresolved add", config: "ADD, t9", wantErr: ErrUnresolvedName, wantLine: 1},
		{name: "duplicate name", config: "t1, TITLE, a\nt1, TITLE, b", wantErr: ErrDuplicateName, wantLine: 2},
		{name: "empty name", config: ", TITLE, a", wantErr: ErrEmptyName, wantLine: 1},
		{name: "named add", config: "t1, TITLE, a\nt2, ADD, t1", wantErr: ErrNamedAdd, wantLine: 2},
		{name: "error after good lines", config: "TITLE, a\n// ok\nBOGUS, b", wantErr: ErrUnknownKeyword, wantLine: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Compile(strings.NewReader(tt.config), Options{Location: est})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if rules != nil {
				t.Errorf("expected no rules on error, got %v", rules)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if diff := cmp.Diff(tt.wantLine, cfgErr.Line); diff != "" {
				t.Errorf("line mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileTimeZone(t *testing.T) {
	_, err := Compile(strings.NewReader("BEFORE, 3 Oct 2016 17:00:10"), Options{})
	var tzErr *TimeZoneError
	if !errors.As(err, &tzErr) {
		t.Fatalf("expected *TimeZoneError, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}

	rules, err := Compile(strings.NewReader("BEFORE, 3 Oct 2016 17:00:10 -0500"), Options{})
	if err != nil {
		t.Fatalf("offset date-time without location: %v", err)
	}
	want := RuleSet{{Line: 1, Predicate: Before{Instant: time.Date(2016, time.October, 3, 22, 0, 10, 0, time.UTC)}}}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompiledRulesMatch(t *testing.T) {
	deadline := time.Date(2016, time.October, 3, 17, 0, 10, 0, est)

	tests := []struct {
		name   string
		config string
		item   model.Item
		want   bool
	}{
		{
			name:   "contiguous title phrase",
			config: "TITLE, stock market",
			item:   model.Item{Title: "Stock Market Crash Today"},
			want:   true,
		},
		{
			name:   "non contiguous title phrase",
			config: "TITLE, stock market",
			item:   model.Item{Title: "Market crashes, stocks fall"},
			want:   false,
		},
		{
			name:   "title keyword also searches description",
			config: "TITLE, stock market",
			item:   model.Item{Title: "Daily wrap", Description: "The stock market fell."},
			want:   true,
		},
		{
			name:   "before excludes the exact instant",
			config: "BEFORE, 3 Oct 2016 17:00:10",
			item:   model.Item{Published: deadline},
			want:   false,
		},
		{
			name:   "after includes the exact instant",
			config: "AFTER, 3 Oct 2016 17:00:10",
			item:   model.Item{Published: deadline},
			want:   true,
		},
		{
			name:   "after excludes earlier items",
			config: "AFTER, 3 Oct 2016 17:00:10",
			item:   model.Item{Published: deadline.Add(-time.Second)},
			want:   false,
		},
		{
			name: "top level rules are anded",
			config: `TITLE, election
AFTER, 3 Oct 2016 17:00:10`,
			item: model.Item{Title: "Election update", Published: deadline.Add(-time.Minute)},
			want: false,
		},
		{
			name: "named combination",
			config: `t1, TITLE, election
t2, DESCRIPTION, Clinton
t3, DESCRIPTION, Trump
t4, OR, t2, t3
t5, AND, t1, t4
ADD, t5`,
			item: model.Item{Title: "Election day", Description: "Trump rally in Ohio"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Compile(strings.NewReader(tt.config), Options{Location: est})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if diff := cmp.Diff(tt.want, rules.Match(tt.item)); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.txt")
	if err := os.WriteFile(path, []byte("// watch list\nTITLE, election\n"), 0o600); err != nil {
		t.Fatalf("write triggers: %v", err)
	}

	rules, err := CompileFile(path, Options{Location: est})
	if err != nil {
		t.Fatalf("compile file: %v", err)
	}
	want := RuleSet{{Line: 2, Predicate: Phrase{Words: []string{"election"}, Field: "title"}}}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("CompileFile() mismatch (-want +got):\n%s", diff)
	}

	if _, err := CompileFile(filepath.Join(t.TempDir(), "missing.txt"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}
