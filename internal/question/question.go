package question

import (
	"fmt"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Kind is the persisted variant tag.
type Kind string

const (
	KindBoolean  Kind = "boolean"
	KindSelect   Kind = "select"
	KindSequence Kind = "sequence"
	KindMatching Kind = "matching"
)

// Kinds lists every variant in reconciliation precedence order.
var Kinds = []Kind{KindMatching, KindSequence, KindSelect, KindBoolean}

// Known reports whether k is one of the four variants.
func (k Kind) Known() bool {
	switch k {
	case KindBoolean, KindSelect, KindSequence, KindMatching:
		return true
	}
	return false
}

// ParseKind validates a kind supplied by an author.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Known() {
		return "", fault.Validation("unknown question kind %q", s)
	}
	return k, nil
}

// Id prefixes per collection.
const (
	OptionPrefix = ""
	ItemPrefix   = ""
	LeftPrefix   = "L"
	RightPrefix  = "R"
)

// Pair is a correct (left, right) matching.
type Pair = ident.Pair

// Choice is one element of a locally scoped collection.
type Choice struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Feedback is shown after an answer.
type Feedback struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Body is the variant-specific state of a question.
type Body interface {
	Kind() Kind
	sealed()
}

// Question is a prompt plus exactly one variant body.
type Question struct {
	ID                string
	Prompt            string
	PromptImage       string
	CorrectFeedback   *Feedback
	IncorrectFeedback *Feedback
	Body              Body
}

// New returns a question of the given kind with an empty body.
func New(id, prompt string, kind Kind) (Question, error) {
	body, err := EmptyBody(kind)
	if err != nil {
		return Question{}, err
	}
	return Question{ID: id, Prompt: prompt, Body: body}, nil
}

// EmptyBody returns the zero body for kind.
func EmptyBody(kind Kind) (Body, error) {
	switch kind {
	case KindBoolean:
		return Boolean{}, nil
	case KindSelect:
		return Select{}, nil
	case KindSequence:
		return Sequence{}, nil
	case KindMatching:
		return Matching{}, nil
	}
	return nil, fault.Validation("unknown question kind %q", kind)
}

// Kind returns the variant tag. A question without a body is Boolean.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return KindBoolean
	}
	return q.Body.Kind()
}

// ChangeKind replaces the body with an empty body of kind. Switching to the
// current kind is a no-op.
func (q Question) ChangeKind(kind Kind) (Question, error) {
	if q.Body != nil && q.Kind() == kind {
		return q, nil
	}
	body, err := EmptyBody(kind)
	if err != nil {
		return q, err
	}
	q.Body = body
	return q, nil
}

// Collection names a choice collection inside a question body.
type Collection string

const (
	Options     Collection = "options"
	Items       Collection = "items"
	LeftColumn  Collection = "left"
	RightColumn Collection = "right"
)

func noCollection(q Question, c Collection) error {
	return fault.Validation("%s question has no %q collection", q.Kind(), c)
}

// AddChoice appends a choice to collection c and returns its new id.
func (q Question) AddChoice(c Collection, text, image string) (Question, string, error) {
	var id string
	switch b := q.Body.(type) {
	case Select:
		if c != Options {
			return q, "", noCollection(q, c)
		}
		q.Body, id = b.AddOption(text, image)
	case Sequence:
		if c != Items {
			return q, "", noCollection(q, c)
		}
		q.Body, id = b.AddItem(text, image)
	case Matching:
		side, ok := sideOf(c)
		if !ok {
			return q, "", noCollection(q, c)
		}
		q.Body, id = b.AddEntry(side, text, image)
	default:
		return q, "", noCollection(q, c)
	}
	return q, id, nil
}

// EditChoice replaces the text and image of choice id in collection c.
func (q Question) EditChoice(c Collection, id, text, image string) (Question, error) {
	var (
		body Body
		err  error
	)
	switch b := q.Body.(type) {
	case Select:
		if c != Options {
			return q, noCollection(q, c)
		}
		body, err = b.EditOption(id, text, image)
	case Sequence:
		if c != Items {
			return q, noCollection(q, c)
		}
		body, err = b.EditItem(id, text, image)
	case Matching:
		side, ok := sideOf(c)
		if !ok {
			return q, noCollection(q, c)
		}
		body, err = b.EditEntry(side, id, text, image)
	default:
		return q, noCollection(q, c)
	}
	if err != nil {
		return q, err
	}
	q.Body = body
	return q, nil
}

// RemoveChoice removes choice id from collection c, renumbering the
// collection and remapping the solution.
func (q Question) RemoveChoice(c Collection, id string) (Question, error) {
	var (
		body Body
		err  error
	)
	switch b := q.Body.(type) {
	case Select:
		if c != Options {
			return q, noCollection(q, c)
		}
		body, err = b.RemoveOption(id)
	case Sequence:
		if c != Items {
			return q, noCollection(q, c)
		}
		body, err = b.RemoveItem(id)
	case Matching:
		side, ok := sideOf(c)
		if !ok {
			return q, noCollection(q, c)
		}
		body, err = b.RemoveEntry(side, id)
	default:
		return q, noCollection(q, c)
	}
	if err != nil {
		return q, err
	}
	q.Body = body
	return q, nil
}

// MoveChoice moves choice id to display position to in collection c.
func (q Question) MoveChoice(c Collection, id string, to int) (Question, error) {
	var (
		body Body
		err  error
	)
	switch b := q.Body.(type) {
	case Select:
		if c != Options {
			return q, noCollection(q, c)
		}
		body, err = b.MoveOption(id, to)
	case Sequence:
		if c != Items {
			return q, noCollection(q, c)
		}
		body, err = b.MoveItem(id, to)
	case Matching:
		side, ok := sideOf(c)
		if !ok {
			return q, noCollection(q, c)
		}
		body, err = b.MoveEntry(side, id, to)
	default:
		return q, noCollection(q, c)
	}
	if err != nil {
		return q, err
	}
	q.Body = body
	return q, nil
}

func sideOf(c Collection) (Side, bool) {
	switch c {
	case LeftColumn:
		return Left, true
	case RightColumn:
		return Right, true
	}
	return "", false
}

// String is used in log lines.
func (q Question) String() string {
	return fmt.Sprintf("question(%s, %s)", q.ID, q.Kind())
}
