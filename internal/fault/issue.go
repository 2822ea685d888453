package fault

import "fmt"

// Issue is a non-fatal DataIntegrity finding collected while loading a
// document. The node it points at is kept as loaded unless the issue says
// it was repaired.
type Issue struct {
	Code     Code   `json:"code"`
	Path     string `json:"path"`
	Message  string `json:"message"`
	Repaired bool   `json:"repaired"`
}

// String renders the issue for logs and CLI output.
func (i Issue) String() string {
	state := "kept"
	if i.Repaired {
		state = "repaired"
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.Code, state, i.Path, i.Message)
}

// Repairedf builds an Issue for an inconsistency the loader fixed.
func Repairedf(path, format string, args ...any) Issue {
	return Issue{Code: CodeDataIntegrity, Path: path, Message: fmt.Sprintf(format, args...), Repaired: true}
}

// Keptf builds an Issue for an inconsistency left in place for review.
func Keptf(path, format string, args ...any) Issue {
	return Issue{Code: CodeDataIntegrity, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Prefix rewrites each issue's path to be rooted under prefix.
func Prefix(prefix string, issues []Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]Issue, len(issues))
	for i, is := range issues {
		if is.Path == "" {
			is.Path = prefix
		} else {
			is.Path = prefix + "/" + is.Path
		}
		out[i] = is
	}
	return out
}

// Split separates issues the loader repaired from those left in place.
// Saving a loaded tree persists the first group; the second stays open.
func Split(issues []Issue) (repaired, kept []Issue) {
	for _, is := range issues {
		if is.Repaired {
			repaired = append(repaired, is)
		} else {
			kept = append(kept, is)
		}
	}
	return repaired, kept
}
