package trigger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"newswatch/internal/model"
)

var est = time.FixedZone("EST", -5*60*60)

func phrase(s string) Phrase {
	return Phrase{Words: Words(s), Field: "title"}
}

func TestEvaluate(t *testing.T) {
	deadline := time.Date(2016, time.October, 3, 17, 0, 10, 0, est)
	item := model.Item{
		GUID:        "item-1",
		Title:       "Election night: results are in",
		Description: "Voters in Ohio and Florida turned out early.",
		Link:        "https://example.com/election",
		Published:   deadline.Add(-time.Hour),
	}

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{name: "phrase in title", p: phrase("election night"), want: true},
		{name: "phrase in description", p: phrase("turned out early"), want: true},
		{name: "phrase nowhere", p: phrase("hurricane"), want: false},
		{name: "phrase split across fields", p: phrase("in voters"), want: false},
		{name: "before later instant", p: Before{Instant: deadline}, want: true},
		{name: "before earlier instant", p: Before{Instant: deadline.Add(-2 * time.Hour)}, want: false},
		{name: "before same instant", p: Before{Instant: item.Published}, want: false},
		{
			name: "before same instant in another zone",
			p:    Before{Instant: item.Published.UTC()},
			want: false,
		},
		{
			name: "before one second later in another zone",
			p:    Before{Instant: item.Published.Add(time.Second).In(time.UTC)},
			want: true,
		},
		{name: "and both true", p: And{Left: phrase("election"), Right: phrase("ohio")}, want: true},
		{name: "and one false", p: And{Left: phrase("election"), Right: phrase("texas")}, want: false},
		{name: "or one true", p: Or{Left: phrase("texas"), Right: phrase("florida")}, want: true},
		{name: "or both false", p: Or{Left: phrase("texas"), Right: phrase("utah")}, want: false},
		{name: "not", p: Not{Inner: phrase("election")}, want: false},
		{
			name: "nested",
			p: And{
				Left:  Or{Left: phrase("texas"), Right: phrase("ohio")},
				Right: Not{Inner: Before{Instant: deadline.Add(-2 * time.Hour)}},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.p, item)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate(%s) mismatch (-want +got):\n%s", tt.p, diff)
			}
		})
	}
}

func TestEvaluateCompositionLaws(t *testing.T) {
	deadline := time.Date(2016, time.October, 3, 17, 0, 10, 0, est)
	preds := []Predicate{
		phrase("purple cow"),
		phrase("hurricane"),
		Before{Instant: deadline},
		Not{Inner: Before{Instant: deadline}},
		Or{Left: phrase("hurricane"), Right: phrase("cow")},
	}
	items := []model.Item{
		{Title: "The purple cow", Published: deadline.Add(-time.Minute)},
		{Title: "Hurricane season", Description: "purple skies", Published: deadline},
		{Description: "A cow, purple", Published: deadline.Add(time.Minute)},
	}

	for _, item := range items {
		for _, a := range preds {
			if got, want := Evaluate(Not{Inner: Not{Inner: a}}, item), Evaluate(a, item); got != want {
				t.Errorf("not(not(%s)) = %v, want %v for %q", a, got, want, item.Title)
			}
			for _, b := range preds {
				want := Evaluate(a, item) && Evaluate(b, item)
				if got := Evaluate(And{Left: a, Right: b}, item); got != want {
					t.Errorf("and(%s, %s) = %v, want %v for %q", a, b, got, want, item.Title)
				}
				if got := Evaluate(And{Left: b, Right: a}, item); got != want {
					t.Errorf("and(%s, %s) = %v, want %v for %q", b, a, got, want, item.Title)
				}
				want = Evaluate(a, item) || Evaluate(b, item)
				if got := Evaluate(Or{Left: a, Right: b}, item); got != want {
					t.Errorf("or(%s, %s) = %v, want %v for %q", a, b, got, want, item.Title)
				}
			}
		}
	}
}

func TestPredicateString(t *testing.T) {
	p := And{
		Left: Phrase{Words: []string{"stock", "market"}, Field: "description"},
		Right: Or{
			Left:  Not{Inner: Before{Instant: time.Date(2016, time.October, 3, 17, 0, 10, 0, est)}},
			Right: Phrase{Words: []string{"crash"}, Field: "title"},
		},
	}
	want := `and(description("stock market"), or(not(before(2016-10-03T17:00:10-05:00)), title("crash")))`
	if diff := cmp.Diff(want, p.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}
