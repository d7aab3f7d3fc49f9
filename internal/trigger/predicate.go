package trigger

import (
	"fmt"
	"strings"
	"time"

	"newswatch/internal/model"
)

// Predicate is a boolean test over an item.
// The set of implementations is closed: Phrase, Before, And, Or and Not.
type Predicate interface {
	fmt.Stringer
	predicate()
}

// Phrase matches items whose title or description contains Words as a
// contiguous phrase. Field records the directive it came from and does not
// restrict which fields are searched.
type Phrase struct {
	Words []string
	Field string
}

// Before matches items published strictly earlier than Instant.
type Before struct {
	Instant time.Time
}

// And matches when both operands match.
type And struct {
	Left, Right Predicate
}

// Or matches when either operand matches.
type Or struct {
	Left, Right Predicate
}

// Not inverts its operand.
type Not struct {
	Inner Predicate
}

func (Phrase) predicate() {}
func (Before) predicate() {}
func (And) predicate()    {}
func (Or) predicate()     {}
func (Not) predicate()    {}

func (p Phrase) String() string {
	return fmt.Sprintf("%s(%q)", p.Field, strings.Join(p.Words, " "))
}

func (p Before) String() string {
	return "before(" + p.Instant.Format(time.RFC3339) + ")"
}

func (p And) String() string { return "and(" + p.Left.String() + ", " + p.Right.String() + ")" }
func (p Or) String() string  { return "or(" + p.Left.String() + ", " + p.Right.String() + ")" }
func (p Not) String() string { return "not(" + p.Inner.String() + ")" }

// Evaluate reports whether item satisfies p.
func Evaluate(p Predicate, item model.Item) bool {
	switch p := p.(type) {
	case Phrase:
		return ContainsPhrase(item.Title, p.Words) || ContainsPhrase(item.Description, p.Words)
	case Before:
		return item.Published.Before(p.Instant)
	case And:
		return Evaluate(p.Left, item) && Evaluate(p.Right, item)
	case Or:
		return Evaluate(p.Left, item) || Evaluate(p.Right, item)
	case Not:
		return !Evaluate(p.Inner, item)
	}
	panic(fmt.Sprintf("trigger: unknown predicate %T", p))
}
