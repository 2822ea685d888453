package testutil

import (
	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/tree"
)

// SampleTrack returns a small track with one question of every kind:
//
//	g1 (icon "flag")
//	  s1 "Basics"
//	    q-bool     boolean, answer true
//	    q-select   options 1..3, correct [2], single answer
//	    q-sequence items 1..3, order [3 1 2]
//	    q-match    L1,L2 / R1,R2, pairs (L1,R2) (L2,R1)
//	g2 (image "groups/g2.png")
//	  s2 "Empty stage"
//
// Every call returns fresh slices.
func SampleTrack(id string) tree.Track {
	t := tree.NewTrack(id, "Sample track", "fixture")
	t.Groups = []tree.StageGroup{
		{
			ID:           "g1",
			Title:        "Getting started",
			Presentation: tree.IconPresentation("flag"),
			Stages: []tree.Stage{{
				ID:        "s1",
				Title:     "Basics",
				Duration:  "10 min",
				KeyPoints: []string{"read", "answer"},
				Questions: []question.Question{
					{ID: "q-bool", Prompt: "The sky is blue.", Body: question.Boolean{Answer: true}},
					{ID: "q-select", Prompt: "Pick one", Body: question.Select{
						Options: choices("1", "2", "3"),
						Correct: []string{"2"},
					}},
					{ID: "q-sequence", Prompt: "Order these", Body: question.Sequence{
						Items: choices("1", "2", "3"),
						Order: []string{"3", "1", "2"},
					}},
					{ID: "q-match", Prompt: "Match", Body: question.Matching{
						Left:  choices("L1", "L2"),
						Right: choices("R1", "R2"),
						Pairs: []question.Pair{{Left: "L1", Right: "R2"}, {Left: "L2", Right: "R1"}},
					}},
				},
			}},
		},
		{
			ID:           "g2",
			Title:        "Wrap up",
			Presentation: tree.ImagePresentation("groups/g2.png"),
			Stages:       []tree.Stage{{ID: "s2", Title: "Empty stage"}},
		},
	}
	return t
}

func choices(ids ...string) []question.Choice {
	out := make([]question.Choice, len(ids))
	for i, id := range ids {
		out[i] = question.Choice{ID: id, Text: "choice " + id}
	}
	return out
}
