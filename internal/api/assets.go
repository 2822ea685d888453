package api

import (
	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/tree"
)

// resolveAssets returns a copy of doc with every image and video reference
// turned into a URL under base.
func resolveAssets(doc tree.Document, base string) tree.Document {
	url := func(ref string) string { return store.ResolveAssetURL(base, ref) }

	doc.BackgroundImage = url(doc.BackgroundImage)
	groups := make([]tree.GroupDocument, len(doc.Groups))
	for i, g := range doc.Groups {
		g.Presentation.Image = url(g.Presentation.Image)
		stages := make([]tree.StageDocument, len(g.Stages))
		for j, s := range g.Stages {
			s.Image = url(s.Image)
			s.Video = url(s.Video)
			records := make([]question.Record, len(s.Questions))
			for k, r := range s.Questions {
				records[k] = resolveRecord(r, url)
			}
			s.Questions = records
			stages[j] = s
		}
		g.Stages = stages
		groups[i] = g
	}
	doc.Groups = groups
	return doc
}

func resolveRecord(r question.Record, url func(string) string) question.Record {
	r.PromptImage = url(r.PromptImage)
	r.CorrectFeedback = resolveFeedback(r.CorrectFeedback, url)
	r.IncorrectFeedback = resolveFeedback(r.IncorrectFeedback, url)
	r.Options = resolveChoices(r.Options, url)
	r.Items = resolveChoices(r.Items, url)
	r.Left = resolveChoices(r.Left, url)
	r.Right = resolveChoices(r.Right, url)
	return r
}

func resolveFeedback(f *question.Feedback, url func(string) string) *question.Feedback {
	if f == nil {
		return nil
	}
	out := *f
	out.Image = url(out.Image)
	return &out
}

func resolveChoices(cs []question.Choice, url func(string) string) []question.Choice {
	if cs == nil {
		return nil
	}
	out := make([]question.Choice, len(cs))
	for i, c := range cs {
		c.Image = url(c.Image)
		out[i] = c
	}
	return out
}
