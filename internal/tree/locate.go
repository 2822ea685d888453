package tree

import (
	"slices"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
)

// GroupRef addresses a stage group.
type GroupRef struct {
	GroupID string `json:"group_id" yaml:"group_id" validate:"required"`
}

// StageRef addresses a stage.
type StageRef struct {
	GroupID string `json:"group_id" yaml:"group_id" validate:"required"`
	StageID string `json:"stage_id" yaml:"stage_id" validate:"required"`
}

// QuestionRef addresses a question.
type QuestionRef struct {
	GroupID    string `json:"group_id" yaml:"group_id" validate:"required"`
	StageID    string `json:"stage_id" yaml:"stage_id" validate:"required"`
	QuestionID string `json:"question_id" yaml:"question_id" validate:"required"`
}

func (r QuestionRef) stage() StageRef {
	return StageRef{GroupID: r.GroupID, StageID: r.StageID}
}

// Ids are compared in canonical form: stored documents hold NFC ids while a
// client may still address a node by the form it was created with.

func groupIndex(t Track, id string) int {
	id = canonical.ID(id)
	return slices.IndexFunc(t.Groups, func(g StageGroup) bool { return g.ID == id })
}

func stageIndex(g StageGroup, id string) int {
	id = canonical.ID(id)
	return slices.IndexFunc(g.Stages, func(s Stage) bool { return s.ID == id })
}

func questionIndex(s Stage, id string) int {
	id = canonical.ID(id)
	return slices.IndexFunc(s.Questions, func(q question.Question) bool { return q.ID == id })
}

// Group returns the stage group with id.
func (t Track) Group(id string) (StageGroup, error) {
	i := groupIndex(t, id)
	if i < 0 {
		return StageGroup{}, fault.NotFound("stage group", id)
	}
	return t.Groups[i], nil
}

// Stage returns the stage addressed by ref.
func (t Track) Stage(ref StageRef) (Stage, error) {
	g, err := t.Group(ref.GroupID)
	if err != nil {
		return Stage{}, err
	}
	i := stageIndex(g, ref.StageID)
	if i < 0 {
		return Stage{}, fault.NotFound("stage", ref.StageID)
	}
	return g.Stages[i], nil
}

// Question returns the question addressed by ref.
func (t Track) Question(ref QuestionRef) (question.Question, error) {
	s, err := t.Stage(ref.stage())
	if err != nil {
		return question.Question{}, err
	}
	i := questionIndex(s, ref.QuestionID)
	if i < 0 {
		return question.Question{}, fault.NotFound("question", ref.QuestionID)
	}
	return s.Questions[i], nil
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

func appendCopy[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

// withGroup rebuilds t with the group at id replaced by fn's result.
func withGroup(t Track, id string, fn func(StageGroup) (StageGroup, error)) (Track, error) {
	i := groupIndex(t, id)
	if i < 0 {
		return t, fault.NotFound("stage group", id)
	}
	g, err := fn(t.Groups[i])
	if err != nil {
		return t, err
	}
	t.Groups = replaceAt(t.Groups, i, g)
	return t, nil
}

func withStage(t Track, ref StageRef, fn func(Stage) (Stage, error)) (Track, error) {
	return withGroup(t, ref.GroupID, func(g StageGroup) (StageGroup, error) {
		i := stageIndex(g, ref.StageID)
		if i < 0 {
			return g, fault.NotFound("stage", ref.StageID)
		}
		s, err := fn(g.Stages[i])
		if err != nil {
			return g, err
		}
		g.Stages = replaceAt(g.Stages, i, s)
		return g, nil
	})
}

func withQuestion(t Track, ref QuestionRef, fn func(question.Question) (question.Question, error)) (Track, error) {
	return withStage(t, ref.stage(), func(s Stage) (Stage, error) {
		i := questionIndex(s, ref.QuestionID)
		if i < 0 {
			return s, fault.NotFound("question", ref.QuestionID)
		}
		q, err := fn(s.Questions[i])
		if err != nil {
			return s, err
		}
		s.Questions = replaceAt(s.Questions, i, q)
		return s, nil
	})
}

// withBody narrows withQuestion to questions of one variant.
func withBody[B question.Body](t Track, ref QuestionRef, fn func(B) (B, error)) (Track, error) {
	return withQuestion(t, ref, func(q question.Question) (question.Question, error) {
		b, ok := q.Body.(B)
		if !ok {
			var want B
			return q, fault.Validation("question %s is %s, not %s", q.ID, q.Kind(), want.Kind())
		}
		b, err := fn(b)
		if err != nil {
			return q, err
		}
		q.Body = b
		return q, nil
	})
}
