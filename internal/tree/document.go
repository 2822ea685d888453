package tree

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
)

// Document is the persisted shape of a Track. Questions are stored as flat
// records and reconciled on the way in.
type Document struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	BackgroundImage string          `json:"background_image,omitempty" yaml:"background_image,omitempty"`
	Groups          []GroupDocument `json:"groups" yaml:"groups"`
}

type GroupDocument struct {
	ID           string               `json:"id" yaml:"id"`
	Title        string               `json:"title" yaml:"title"`
	Description  string               `json:"description,omitempty" yaml:"description,omitempty"`
	Presentation PresentationDocument `json:"presentation" yaml:"presentation"`
	Stages       []StageDocument      `json:"stages" yaml:"stages"`
}

type PresentationDocument struct {
	Mode  string `json:"mode" yaml:"mode"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

type StageDocument struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Duration    string            `json:"duration,omitempty" yaml:"duration,omitempty"`
	Image       string            `json:"image,omitempty" yaml:"image,omitempty"`
	Video       string            `json:"video,omitempty" yaml:"video,omitempty"`
	KeyPoints   []string          `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Questions   []question.Record `json:"questions" yaml:"questions"`
}

// ToDocument converts t to its persisted shape. Collections are never nil.
func ToDocument(t Track) Document {
	doc := Document{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		BackgroundImage: t.BackgroundImage,
		Groups:          make([]GroupDocument, 0, len(t.Groups)),
	}
	for _, g := range t.Groups {
		gd := GroupDocument{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Presentation: PresentationDocument{
				Mode:  string(g.Presentation.Mode),
				Icon:  g.Presentation.Icon,
				Image: g.Presentation.Image,
			},
			Stages: make([]StageDocument, 0, len(g.Stages)),
		}
		for _, s := range g.Stages {
			sd := StageDocument{
				ID:          s.ID,
				Title:       s.Title,
				Description: s.Description,
				Duration:    s.Duration,
				Image:       s.Image,
				Video:       s.Video,
				KeyPoints:   slices.Clone(s.KeyPoints),
				Questions:   make([]question.Record, 0, len(s.Questions)),
			}
			for _, q := range s.Questions {
				sd.Questions = append(sd.Questions, question.ToRecord(q))
			}
			gd.Stages = append(gd.Stages, sd)
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

// FromDocument converts a persisted document into a Track. Every
// inconsistency found is returned as an issue; repairable ones are fixed in
// the result, the rest are kept as loaded.
func FromDocument(doc Document) (Track, []fault.Issue) {
	var issues []fault.Issue
	t := Track{
		ID:              canonical.ID(doc.ID),
		Name:            doc.Name,
		Description:     doc.Description,
		BackgroundImage: doc.BackgroundImage,
	}
	for _, gd := range doc.Groups {
		gpath := groupPath(gd.ID)
		p, pissues := loadPresentation(gd.Presentation)
		issues = append(issues, fault.Prefix(gpath, pissues)...)
		g := StageGroup{
			ID:           canonical.ID(gd.ID),
			Title:        gd.Title,
			Description:  gd.Description,
			Presentation: p,
		}
		for _, sd := range gd.Stages {
			spath := stagePath(gpath, sd.ID)
			s := Stage{
				ID:          canonical.ID(sd.ID),
				Title:       sd.Title,
				Description: sd.Description,
				Duration:    sd.Duration,
				Image:       sd.Image,
				Video:       sd.Video,
				KeyPoints:   slices.Clone(sd.KeyPoints),
			}
			for _, rec := range sd.Questions {
				q, qissues := question.FromRecord(rec)
				issues = append(issues, fault.Prefix(questionPath(spath, rec.ID), qissues)...)
				q.ID = canonical.ID(q.ID)
				s.Questions = append(s.Questions, q)
			}
			g.Stages = append(g.Stages, s)
		}
		t.Groups = append(t.Groups, g)
	}
	issues = append(issues, identityIssues(t)...)
	return t, issues
}

// loadPresentation enforces that exactly one presentation field is active.
// An unknown mode is inferred from whichever field is populated.
func loadPresentation(pd PresentationDocument) (Presentation, []fault.Issue) {
	switch PresentationMode(pd.Mode) {
	case PresentIcon:
		if pd.Image != "" {
			return IconPresentation(pd.Icon), []fault.Issue{fault.Repairedf("presentation", "cleared image %q of icon presentation", pd.Image)}
		}
		return IconPresentation(pd.Icon), nil
	case PresentImage:
		if pd.Icon != "" {
			return ImagePresentation(pd.Image), []fault.Issue{fault.Repairedf("presentation", "cleared icon %q of image presentation", pd.Icon)}
		}
		return ImagePresentation(pd.Image), nil
	}
	if pd.Image != "" && pd.Icon == "" {
		return ImagePresentation(pd.Image), []fault.Issue{fault.Repairedf("presentation", "unknown mode %q; using image", pd.Mode)}
	}
	issue := fault.Repairedf("presentation", "unknown mode %q; using icon", pd.Mode)
	if pd.Image != "" {
		issue.Message += fmt.Sprintf(" and cleared image %q", pd.Image)
	}
	return IconPresentation(pd.Icon), []fault.Issue{issue}
}

// Encode returns the canonical JSON document for t.
func Encode(t Track) ([]byte, error) {
	return canonical.Marshal(ToDocument(t))
}

// Decode parses a JSON document.
func Decode(data []byte) (Track, []fault.Issue, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Track{}, nil, &fault.Error{Code: fault.CodeDataIntegrity, Message: "malformed track document", Err: err}
	}
	t, issues := FromDocument(doc)
	return t, issues, nil
}

// YAMLToJSON re-encodes a YAML authoring document as JSON without
// interpreting it, so schema checks and repairs see what the file says.
func YAMLToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &fault.Error{Code: fault.CodeDataIntegrity, Message: "malformed track document", Err: err}
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, &fault.Error{Code: fault.CodeDataIntegrity, Message: "malformed track document", Err: err}
	}
	return out, nil
}

// EncodeYAML renders t as YAML for export.
func EncodeYAML(t Track) ([]byte, error) {
	return yaml.Marshal(ToDocument(t))
}

// ETag returns the content hash of t's canonical document, the tag a store
// assigns when it saves t.
func ETag(t Track) (string, error) {
	return canonical.ETag(canonical.DomainTrack, ToDocument(t))
}
