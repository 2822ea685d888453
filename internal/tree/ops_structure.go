package tree

import (
	"slices"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/ident"
)

// Operation names.
const (
	OpEditTrack          = "edit_track"
	OpAddStageGroup      = "add_stage_group"
	OpEditStageGroup     = "edit_stage_group"
	OpSetPresentation    = "set_presentation"
	OpDeleteStageGroup   = "delete_stage_group"
	OpMoveStageGroup     = "move_stage_group"
	OpAddStage           = "add_stage"
	OpEditStage          = "edit_stage"
	OpDeleteStage        = "delete_stage"
	OpMoveStage          = "move_stage"
	OpAddQuestion        = "add_question"
	OpEditQuestion       = "edit_question"
	OpChangeQuestionKind = "change_question_kind"
	OpDeleteQuestion     = "delete_question"
	OpMoveQuestion       = "move_question"
	OpSetAnswer          = "set_answer"
	OpAddChoice          = "add_choice"
	OpEditChoice         = "edit_choice"
	OpRemoveChoice       = "remove_choice"
	OpMoveChoice         = "move_choice"
	OpSetCorrectOptions  = "set_correct_options"
	OpSetAllowMultiple   = "set_allow_multiple"
	OpToggleCorrect      = "toggle_correct"
	OpSetOrder           = "set_order"
	OpAddPair            = "add_pair"
	OpRemovePair         = "remove_pair"
)

func checkNewID(t Track, entity, id string) error {
	if t.hasID(id) {
		return fault.Validation("%s id %q is already in use", entity, id)
	}
	return nil
}

// EditTrack replaces the track's own fields.
type EditTrack struct {
	Name            string `json:"name" yaml:"name" validate:"required,max=200"`
	Description     string `json:"description" yaml:"description" validate:"max=4000"`
	BackgroundImage string `json:"background_image" yaml:"background_image"`
}

func (EditTrack) Op() string { return OpEditTrack }

func (m EditTrack) Apply(t Track) (Track, error) {
	t.Name = m.Name
	t.Description = m.Description
	t.BackgroundImage = m.BackgroundImage
	return t, nil
}

// AddStageGroup appends a stage group. Exactly one of Icon and Image must
// be given.
type AddStageGroup struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Title       string `json:"title" yaml:"title" validate:"required,max=200"`
	Description string `json:"description" yaml:"description" validate:"max=4000"`
	Icon        string `json:"icon" yaml:"icon" validate:"required_without=Image,excluded_with=Image"`
	Image       string `json:"image" yaml:"image"`
}

func (AddStageGroup) Op() string                  { return OpAddStageGroup }
func (m AddStageGroup) NewID() string             { return m.ID }
func (m AddStageGroup) WithID(id string) Mutation { m.ID = id; return m }

func (m AddStageGroup) Apply(t Track) (Track, error) {
	if err := checkNewID(t, "stage group", m.ID); err != nil {
		return t, err
	}
	p := IconPresentation(m.Icon)
	if m.Image != "" {
		p = ImagePresentation(m.Image)
	}
	t.Groups = appendCopy(t.Groups, StageGroup{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Presentation: p,
	})
	return t, nil
}

// EditStageGroup replaces a group's title and description.
type EditStageGroup struct {
	GroupRef    `yaml:",inline"`
	Title       string `json:"title" yaml:"title" validate:"required,max=200"`
	Description string `json:"description" yaml:"description" validate:"max=4000"`
}

func (EditStageGroup) Op() string { return OpEditStageGroup }

func (m EditStageGroup) Apply(t Track) (Track, error) {
	return withGroup(t, m.GroupID, func(g StageGroup) (StageGroup, error) {
		g.Title = m.Title
		g.Description = m.Description
		return g, nil
	})
}

// SetPresentation switches a group between icon and image. The other
// field is cleared.
type SetPresentation struct {
	GroupRef `yaml:",inline"`
	Mode     PresentationMode `json:"mode" yaml:"mode" validate:"required,oneof=icon image"`
	Value    string           `json:"value" yaml:"value" validate:"required"`
}

func (SetPresentation) Op() string { return OpSetPresentation }

func (m SetPresentation) Apply(t Track) (Track, error) {
	return withGroup(t, m.GroupID, func(g StageGroup) (StageGroup, error) {
		if m.Mode == PresentImage {
			g.Presentation = ImagePresentation(m.Value)
		} else {
			g.Presentation = IconPresentation(m.Value)
		}
		return g, nil
	})
}

// DeleteStageGroup removes a group with all of its stages and questions.
type DeleteStageGroup struct {
	GroupRef `yaml:",inline"`
}

func (DeleteStageGroup) Op() string { return OpDeleteStageGroup }

func (m DeleteStageGroup) Apply(t Track) (Track, error) {
	i := groupIndex(t, m.GroupID)
	if i < 0 {
		return t, fault.NotFound("stage group", m.GroupID)
	}
	t.Groups = ident.Remove(t.Groups, i)
	return t, nil
}

// MoveStageGroup moves a group to display position To. Positions past the
// end are clamped.
type MoveStageGroup struct {
	GroupRef `yaml:",inline"`
	To       int `json:"to" yaml:"to" validate:"min=0"`
}

func (MoveStageGroup) Op() string { return OpMoveStageGroup }

func (m MoveStageGroup) Apply(t Track) (Track, error) {
	i := groupIndex(t, m.GroupID)
	if i < 0 {
		return t, fault.NotFound("stage group", m.GroupID)
	}
	t.Groups = ident.Move(t.Groups, i, m.To)
	return t, nil
}

// AddStage appends a stage to a group.
type AddStage struct {
	GroupRef    `yaml:",inline"`
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Title       string   `json:"title" yaml:"title" validate:"required,max=200"`
	Description string   `json:"description" yaml:"description" validate:"max=4000"`
	Duration    string   `json:"duration" yaml:"duration" validate:"max=64"`
	Image       string   `json:"image" yaml:"image"`
	Video       string   `json:"video" yaml:"video"`
	KeyPoints   []string `json:"key_points" yaml:"key_points" validate:"dive,required"`
}

func (AddStage) Op() string                  { return OpAddStage }
func (m AddStage) NewID() string             { return m.ID }
func (m AddStage) WithID(id string) Mutation { m.ID = id; return m }

func (m AddStage) Apply(t Track) (Track, error) {
	if err := checkNewID(t, "stage", m.ID); err != nil {
		return t, err
	}
	return withGroup(t, m.GroupID, func(g StageGroup) (StageGroup, error) {
		g.Stages = appendCopy(g.Stages, Stage{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Duration:    m.Duration,
			Image:       m.Image,
			Video:       m.Video,
			KeyPoints:   slices.Clone(m.KeyPoints),
		})
		return g, nil
	})
}

// EditStage replaces a stage's own fields. Questions are untouched.
type EditStage struct {
	StageRef    `yaml:",inline"`
	Title       string   `json:"title" yaml:"title" validate:"required,max=200"`
	Description string   `json:"description" yaml:"description" validate:"max=4000"`
	Duration    string   `json:"duration" yaml:"duration" validate:"max=64"`
	Image       string   `json:"image" yaml:"image"`
	Video       string   `json:"video" yaml:"video"`
	KeyPoints   []string `json:"key_points" yaml:"key_points" validate:"dive,required"`
}

func (EditStage) Op() string { return OpEditStage }

func (m EditStage) Apply(t Track) (Track, error) {
	return withStage(t, m.StageRef, func(s Stage) (Stage, error) {
		s.Title = m.Title
		s.Description = m.Description
		s.Duration = m.Duration
		s.Image = m.Image
		s.Video = m.Video
		s.KeyPoints = slices.Clone(m.KeyPoints)
		return s, nil
	})
}

type DeleteStage struct {
	StageRef `yaml:",inline"`
}

func (DeleteStage) Op() string { return OpDeleteStage }

func (m DeleteStage) Apply(t Track) (Track, error) {
	return withGroup(t, m.GroupID, func(g StageGroup) (StageGroup, error) {
		i := stageIndex(g, m.StageID)
		if i < 0 {
			return g, fault.NotFound("stage", m.StageID)
		}
		g.Stages = ident.Remove(g.Stages, i)
		return g, nil
	})
}

// MoveStage reorders a stage within its group.
type MoveStage struct {
	StageRef `yaml:",inline"`
	To       int `json:"to" yaml:"to" validate:"min=0"`
}

func (MoveStage) Op() string { return OpMoveStage }

func (m MoveStage) Apply(t Track) (Track, error) {
	return withGroup(t, m.GroupID, func(g StageGroup) (StageGroup, error) {
		i := stageIndex(g, m.StageID)
		if i < 0 {
			return g, fault.NotFound("stage", m.StageID)
		}
		g.Stages = ident.Move(g.Stages, i, m.To)
		return g, nil
	})
}
