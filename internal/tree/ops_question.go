package tree

import (
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
	"github.com/roach88/coursetree/internal/question"
)

// AddQuestion appends an empty question of Kind to a stage.
type AddQuestion struct {
	StageRef    `yaml:",inline"`
	ID          string        `json:"id" yaml:"id" validate:"required"`
	Kind        question.Kind `json:"kind" yaml:"kind" validate:"required,question_kind"`
	Prompt      string        `json:"prompt" yaml:"prompt" validate:"required,max=2000"`
	PromptImage string        `json:"prompt_image" yaml:"prompt_image"`
}

func (AddQuestion) Op() string                  { return OpAddQuestion }
func (m AddQuestion) NewID() string             { return m.ID }
func (m AddQuestion) WithID(id string) Mutation { m.ID = id; return m }

func (m AddQuestion) Apply(t Track) (Track, error) {
	if err := checkNewID(t, "question", m.ID); err != nil {
		return t, err
	}
	q, err := question.New(m.ID, m.Prompt, m.Kind)
	if err != nil {
		return t, err
	}
	q.PromptImage = m.PromptImage
	return withStage(t, m.StageRef, func(s Stage) (Stage, error) {
		s.Questions = appendCopy(s.Questions, q)
		return s, nil
	})
}

// EditQuestion replaces the fields every variant shares.
type EditQuestion struct {
	QuestionRef       `yaml:",inline"`
	Prompt            string             `json:"prompt" yaml:"prompt" validate:"required,max=2000"`
	PromptImage       string             `json:"prompt_image" yaml:"prompt_image"`
	CorrectFeedback   *question.Feedback `json:"correct_feedback" yaml:"correct_feedback"`
	IncorrectFeedback *question.Feedback `json:"incorrect_feedback" yaml:"incorrect_feedback"`
}

func (EditQuestion) Op() string { return OpEditQuestion }

func (m EditQuestion) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		q.Prompt = m.Prompt
		q.PromptImage = m.PromptImage
		q.CorrectFeedback = copyFeedback(m.CorrectFeedback)
		q.IncorrectFeedback = copyFeedback(m.IncorrectFeedback)
		return q, nil
	})
}

func copyFeedback(f *question.Feedback) *question.Feedback {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// ChangeQuestionKind switches a question to another variant. The new body
// starts empty.
type ChangeQuestionKind struct {
	QuestionRef `yaml:",inline"`
	Kind        question.Kind `json:"kind" yaml:"kind" validate:"required,question_kind"`
}

func (ChangeQuestionKind) Op() string { return OpChangeQuestionKind }

func (m ChangeQuestionKind) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		return q.ChangeKind(m.Kind)
	})
}

type DeleteQuestion struct {
	QuestionRef `yaml:",inline"`
}

func (DeleteQuestion) Op() string { return OpDeleteQuestion }

func (m DeleteQuestion) Apply(t Track) (Track, error) {
	return withStage(t, m.stage(), func(s Stage) (Stage, error) {
		i := questionIndex(s, m.QuestionID)
		if i < 0 {
			return s, fault.NotFound("question", m.QuestionID)
		}
		s.Questions = ident.Remove(s.Questions, i)
		return s, nil
	})
}

type MoveQuestion struct {
	QuestionRef `yaml:",inline"`
	To          int `json:"to" yaml:"to" validate:"min=0"`
}

func (MoveQuestion) Op() string { return OpMoveQuestion }

func (m MoveQuestion) Apply(t Track) (Track, error) {
	return withStage(t, m.stage(), func(s Stage) (Stage, error) {
		i := questionIndex(s, m.QuestionID)
		if i < 0 {
			return s, fault.NotFound("question", m.QuestionID)
		}
		s.Questions = ident.Move(s.Questions, i, m.To)
		return s, nil
	})
}

// SetAnswer sets a boolean question's answer and statement.
type SetAnswer struct {
	QuestionRef `yaml:",inline"`
	Answer      bool   `json:"answer" yaml:"answer"`
	Statement   string `json:"statement" yaml:"statement" validate:"max=2000"`
}

func (SetAnswer) Op() string { return OpSetAnswer }

func (m SetAnswer) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Boolean) (question.Boolean, error) {
		return b.SetAnswer(m.Answer).SetStatement(m.Statement), nil
	})
}

// AddChoice appends an option, item or column entry. The new local id is
// the next one in the collection.
type AddChoice struct {
	QuestionRef `yaml:",inline"`
	Collection  question.Collection `json:"collection" yaml:"collection" validate:"required,oneof=options items left right"`
	Text        string              `json:"text" yaml:"text" validate:"required,max=500"`
	Image       string              `json:"image" yaml:"image"`
}

func (AddChoice) Op() string { return OpAddChoice }

func (m AddChoice) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		q, _, err := q.AddChoice(m.Collection, m.Text, m.Image)
		return q, err
	})
}

type EditChoice struct {
	QuestionRef `yaml:",inline"`
	Collection  question.Collection `json:"collection" yaml:"collection" validate:"required,oneof=options items left right"`
	ChoiceID    string              `json:"choice_id" yaml:"choice_id" validate:"required"`
	Text        string              `json:"text" yaml:"text" validate:"required,max=500"`
	Image       string              `json:"image" yaml:"image"`
}

func (EditChoice) Op() string { return OpEditChoice }

func (m EditChoice) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		return q.EditChoice(m.Collection, m.ChoiceID, m.Text, m.Image)
	})
}

// RemoveChoice removes an entry, renumbers its collection and remaps the
// question's solution.
type RemoveChoice struct {
	QuestionRef `yaml:",inline"`
	Collection  question.Collection `json:"collection" yaml:"collection" validate:"required,oneof=options items left right"`
	ChoiceID    string              `json:"choice_id" yaml:"choice_id" validate:"required"`
}

func (RemoveChoice) Op() string { return OpRemoveChoice }

func (m RemoveChoice) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		return q.RemoveChoice(m.Collection, m.ChoiceID)
	})
}

type MoveChoice struct {
	QuestionRef `yaml:",inline"`
	Collection  question.Collection `json:"collection" yaml:"collection" validate:"required,oneof=options items left right"`
	ChoiceID    string              `json:"choice_id" yaml:"choice_id" validate:"required"`
	To          int                 `json:"to" yaml:"to" validate:"min=0"`
}

func (MoveChoice) Op() string { return OpMoveChoice }

func (m MoveChoice) Apply(t Track) (Track, error) {
	return withQuestion(t, m.QuestionRef, func(q question.Question) (question.Question, error) {
		return q.MoveChoice(m.Collection, m.ChoiceID, m.To)
	})
}

// SetCorrectOptions replaces a select question's correct set. Ids that are
// not current options are ignored.
type SetCorrectOptions struct {
	QuestionRef `yaml:",inline"`
	Correct     []string `json:"correct" yaml:"correct"`
}

func (SetCorrectOptions) Op() string { return OpSetCorrectOptions }

func (m SetCorrectOptions) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Select) (question.Select, error) {
		return b.SetCorrect(m.Correct)
	})
}

// ToggleCorrect flips whether one option is correct. In single-answer mode
// marking an option replaces the previous answer.
type ToggleCorrect struct {
	QuestionRef `yaml:",inline"`
	OptionID    string `json:"option_id" yaml:"option_id" validate:"required"`
}

func (ToggleCorrect) Op() string { return OpToggleCorrect }

func (m ToggleCorrect) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Select) (question.Select, error) {
		return b.ToggleCorrect(m.OptionID), nil
	})
}

type SetAllowMultiple struct {
	QuestionRef `yaml:",inline"`
	Allow       bool `json:"allow" yaml:"allow"`
}

func (SetAllowMultiple) Op() string { return OpSetAllowMultiple }

func (m SetAllowMultiple) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Select) (question.Select, error) {
		return b.SetAllowMultiple(m.Allow), nil
	})
}

// SetOrder replaces a sequence question's correct order.
type SetOrder struct {
	QuestionRef `yaml:",inline"`
	Order       []string `json:"order" yaml:"order"`
}

func (SetOrder) Op() string { return OpSetOrder }

func (m SetOrder) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Sequence) (question.Sequence, error) {
		return b.SetOrder(m.Order)
	})
}

type AddPair struct {
	QuestionRef `yaml:",inline"`
	Left        string `json:"left" yaml:"left" validate:"required"`
	Right       string `json:"right" yaml:"right" validate:"required"`
}

func (AddPair) Op() string { return OpAddPair }

func (m AddPair) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Matching) (question.Matching, error) {
		return b.AddPair(m.Left, m.Right)
	})
}

type RemovePair struct {
	QuestionRef `yaml:",inline"`
	Left        string `json:"left" yaml:"left" validate:"required"`
	Right       string `json:"right" yaml:"right" validate:"required"`
}

func (RemovePair) Op() string { return OpRemovePair }

func (m RemovePair) Apply(t Track) (Track, error) {
	return withBody(t, m.QuestionRef, func(b question.Matching) (question.Matching, error) {
		return b.RemovePair(m.Left, m.Right), nil
	})
}
