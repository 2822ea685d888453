package tree

import (
	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/question"
)

// Track is the root of the content tree and the unit of persistence.
type Track struct {
	ID              string
	Name            string
	Description     string
	BackgroundImage string
	Groups          []StageGroup
}

// NewTrack returns an empty track. id is kept in canonical form.
func NewTrack(id, name, description string) Track {
	return Track{ID: canonical.ID(id), Name: name, Description: description}
}

// PresentationMode picks which presentation field is active.
type PresentationMode string

const (
	PresentIcon  PresentationMode = "icon"
	PresentImage PresentationMode = "image"
)

// Presentation is how a stage group is drawn: a symbolic icon name or an
// uploaded image reference. The inactive field is always empty.
type Presentation struct {
	Mode  PresentationMode
	Icon  string
	Image string
}

// IconPresentation selects a symbolic icon.
func IconPresentation(name string) Presentation {
	return Presentation{Mode: PresentIcon, Icon: name}
}

// ImagePresentation selects an uploaded image.
func ImagePresentation(ref string) Presentation {
	return Presentation{Mode: PresentImage, Image: ref}
}

// Value returns the active field.
func (p Presentation) Value() string {
	if p.Mode == PresentImage {
		return p.Image
	}
	return p.Icon
}

// StageGroup is a named phase within a track.
type StageGroup struct {
	ID           string
	Title        string
	Description  string
	Presentation Presentation
	Stages       []Stage
}

// Stage is one unit of instructional content.
type Stage struct {
	ID          string
	Title       string
	Description string

	// Duration is free text ("10 min").
	Duration string

	Image     string
	Video     string
	KeyPoints []string
	Questions []question.Question
}

// Counts returns the number of groups, stages and questions in t.
func (t Track) Counts() (groups, stages, questions int) {
	groups = len(t.Groups)
	for _, g := range t.Groups {
		stages += len(g.Stages)
		for _, s := range g.Stages {
			questions += len(s.Questions)
		}
	}
	return groups, stages, questions
}

// hasID reports whether any node in t carries id.
func (t Track) hasID(id string) bool {
	id = canonical.ID(id)
	if t.ID == id {
		return true
	}
	for _, g := range t.Groups {
		if g.ID == id {
			return true
		}
		for _, s := range g.Stages {
			if s.ID == id {
				return true
			}
			for _, q := range s.Questions {
				if q.ID == id {
					return true
				}
			}
		}
	}
	return false
}
