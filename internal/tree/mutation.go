package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
)

// Mutation is one author action against a track.
type Mutation interface {
	// Op is the stable operation name used on the wire.
	Op() string

	// Apply returns the changed tree. Implementations must not modify t.
	// Callers use Plan, which validates arguments first.
	Apply(t Track) (Track, error)
}

// Creator is implemented by mutations that introduce a new node.
type Creator interface {
	Mutation
	NewID() string
	WithID(id string) Mutation
}

// IDGenerator produces entity identities.
type IDGenerator interface {
	Generate() string
}

// AssignID fills in the identity of a creating mutation that has none.
// Other mutations are returned unchanged.
func AssignID(m Mutation, gen IDGenerator) Mutation {
	c, ok := m.(Creator)
	if !ok || c.NewID() != "" {
		return m
	}
	return c.WithID(gen.Generate())
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("question_kind", func(fl validator.FieldLevel) bool {
		_, err := question.ParseKind(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks m's arguments against its validate tags.
func Validate(m Mutation) error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &fault.Error{Code: fault.CodeValidationFailed, Message: m.Op() + ": invalid arguments", Err: err}
	}
	fields := make([]string, 0, len(verrs))
	fe := fault.Validation("%s: invalid arguments", m.Op())
	fe.Details = make(map[string]string, len(verrs))
	for _, v := range verrs {
		fe.Details[v.Field()] = v.Tag()
		fields = append(fields, v.Field())
	}
	sort.Strings(fields)
	fe.Message += " " + strings.Join(fields, ", ")
	return fe
}

// Plan validates and applies m. On any error the input tree is returned
// unchanged, so a failed mutation never corrupts the caller's tree. A
// mutation that would introduce a new integrity issue is rejected.
func Plan(t Track, m Mutation) (Track, error) {
	if m == nil {
		return t, fault.Validation("no mutation")
	}
	if err := Validate(m); err != nil {
		return t, err
	}
	if c, ok := m.(Creator); ok {
		m = c.WithID(canonical.ID(c.NewID()))
	}
	next, err := m.Apply(t)
	if err != nil {
		return t, err
	}
	if introduced := newIssues(CheckIntegrity(t), CheckIntegrity(next)); len(introduced) > 0 {
		return t, fault.Integrity("%s would leave %s", m.Op(), introduced[0])
	}
	return next, nil
}

type decodeFunc func(raw []byte) (Mutation, error)

func decoder[M Mutation]() decodeFunc {
	return func(raw []byte) (Mutation, error) {
		var m M
		if len(bytes.TrimSpace(raw)) == 0 {
			return m, nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, &fault.Error{Code: fault.CodeValidationFailed, Message: m.Op() + ": malformed arguments", Err: err}
		}
		return m, nil
	}
}

var registry = map[string]decodeFunc{
	OpEditTrack:          decoder[EditTrack](),
	OpAddStageGroup:      decoder[AddStageGroup](),
	OpEditStageGroup:     decoder[EditStageGroup](),
	OpSetPresentation:    decoder[SetPresentation](),
	OpDeleteStageGroup:   decoder[DeleteStageGroup](),
	OpMoveStageGroup:     decoder[MoveStageGroup](),
	OpAddStage:           decoder[AddStage](),
	OpEditStage:          decoder[EditStage](),
	OpDeleteStage:        decoder[DeleteStage](),
	OpMoveStage:          decoder[MoveStage](),
	OpAddQuestion:        decoder[AddQuestion](),
	OpEditQuestion:       decoder[EditQuestion](),
	OpChangeQuestionKind: decoder[ChangeQuestionKind](),
	OpDeleteQuestion:     decoder[DeleteQuestion](),
	OpMoveQuestion:       decoder[MoveQuestion](),
	OpSetAnswer:          decoder[SetAnswer](),
	OpAddChoice:          decoder[AddChoice](),
	OpEditChoice:         decoder[EditChoice](),
	OpRemoveChoice:       decoder[RemoveChoice](),
	OpMoveChoice:         decoder[MoveChoice](),
	OpSetCorrectOptions:  decoder[SetCorrectOptions](),
	OpSetAllowMultiple:   decoder[SetAllowMultiple](),
	OpToggleCorrect:      decoder[ToggleCorrect](),
	OpSetOrder:           decoder[SetOrder](),
	OpAddPair:            decoder[AddPair](),
	OpRemovePair:         decoder[RemovePair](),
}

// Ops lists every registered operation name, sorted.
func Ops() []string {
	ops := make([]string, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// DecodeMutation builds the mutation named op from its JSON arguments.
// Unknown operations and unknown argument fields fail validation.
func DecodeMutation(op string, args []byte) (Mutation, error) {
	dec, ok := registry[op]
	if !ok {
		return nil, fault.Validation("unknown operation %q", op)
	}
	return dec(args)
}

// newIssues returns the issues in after whose path and code do not occur in
// before.
func newIssues(before, after []fault.Issue) []fault.Issue {
	type key struct {
		code fault.Code
		path string
	}
	seen := make(map[key]bool, len(before))
	for _, is := range before {
		seen[key{is.Code, is.Path}] = true
	}
	var out []fault.Issue
	for _, is := range after {
		if !seen[key{is.Code, is.Path}] {
			out = append(out, is)
		}
	}
	return out
}
