package tree

import (
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
)

func groupPath(id string) string           { return "groups/" + id }
func stagePath(group, id string) string    { return group + "/stages/" + id }
func questionPath(stage, id string) string { return stage + "/questions/" + id }

// CheckIntegrity reports every invariant t violates. Paths are built from
// node ids, so an issue keeps its path when nodes around it move.
func CheckIntegrity(t Track) []fault.Issue {
	issues := identityIssues(t)
	for _, g := range t.Groups {
		gpath := groupPath(g.ID)
		p := g.Presentation
		switch {
		case p.Mode != PresentIcon && p.Mode != PresentImage:
			issues = append(issues, fault.Keptf(gpath+"/presentation", "unknown mode %q", p.Mode))
		case p.Mode == PresentIcon && p.Image != "", p.Mode == PresentImage && p.Icon != "":
			issues = append(issues, fault.Keptf(gpath+"/presentation", "both icon and image are set"))
		}
		for _, s := range g.Stages {
			spath := stagePath(gpath, s.ID)
			for _, q := range s.Questions {
				issues = append(issues, fault.Prefix(questionPath(spath, q.ID), question.CheckIntegrity(q))...)
			}
		}
	}
	return issues
}

// identityIssues reports empty and repeated node ids. Ids are unique across
// the whole track.
func identityIssues(t Track) []fault.Issue {
	var issues []fault.Issue
	seen := map[string]bool{t.ID: true}
	check := func(path, entity, id string) {
		switch {
		case id == "":
			issues = append(issues, fault.Keptf(path, "%s has no id", entity))
		case seen[id]:
			issues = append(issues, fault.Keptf(path, "%s id %q is not unique", entity, id))
		}
		seen[id] = true
	}
	if t.ID == "" {
		issues = append(issues, fault.Keptf("", "track has no id"))
	}
	for _, g := range t.Groups {
		gpath := groupPath(g.ID)
		check(gpath, "stage group", g.ID)
		for _, s := range g.Stages {
			spath := stagePath(gpath, s.ID)
			check(spath, "stage", s.ID)
			for _, q := range s.Questions {
				check(questionPath(spath, q.ID), "question", q.ID)
			}
		}
	}
	return issues
}
