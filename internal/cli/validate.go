package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/schema"
	"github.com/roach88/coursetree/internal/tree"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // any issue fails validation
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []fault.Issue `json:"issues"`
	// ETag is the tag the repaired document will carry once imported.
	ETag string `json:"etag"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a track document without importing it",
		Long: `Validate a JSON or YAML track document.

The document is checked against the track schema, then decoded the way the
store decodes it. Repairable drift is listed as issues; it only fails
validation with --strict. No database is opened.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on any issue, repaired or not")
	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document", err)
	}
	if isYAMLPath(path) {
		if data, err = tree.YAMLToJSON(data); err != nil {
			return f.Fail("invalid document", err)
		}
	}
	f.VerboseLog("Validating %s (%d bytes)", path, len(data))

	if err := schema.ValidateDocument(path, data); err != nil {
		return f.Fail("invalid document", err)
	}
	t, issues, err := tree.Decode(data)
	if err != nil {
		return f.Fail("invalid document", err)
	}
	// Issues the loader could not repair are still present in the tree.
	remaining := tree.CheckIntegrity(t)
	etag, err := tree.ETag(t)
	if err != nil {
		return f.Fail("invalid document", fault.Integrity("%s: %v", path, err))
	}

	res := ValidationResult{
		Valid:  len(remaining) == 0 && (!opts.Strict || len(issues) == 0),
		Issues: issues,
		ETag:   etag,
	}
	if res.Issues == nil {
		res.Issues = []fault.Issue{}
	}

	if err := f.Success(res, func(w io.Writer) {
		if len(issues) == 0 {
			fmt.Fprintf(w, "✓ %s is valid (etag %s)\n", path, etag)
			return
		}
		fmt.Fprintf(w, "%s: %d issue(s)\n", path, len(issues))
		printIssues(w, issues)
	}); err != nil {
		return err
	}
	if !res.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d issue(s)", path, len(issues)))
	}
	return nil
}

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Fix bool
}

// CheckResult is the JSON payload of check.
type CheckResult struct {
	ID      string        `json:"id"`
	Version int64         `json:"version"`
	Issues  []fault.Issue `json:"issues"`
	Fixed   bool          `json:"fixed"`
	// Open lists the issues a save cannot resolve.
	Open []fault.Issue `json:"open"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <track-id>",
		Short: "Report drift in a stored track",
		Long: `Load a stored track and report every inconsistency found.

Loading always repairs what it can in memory. --fix writes the repaired
track back as a new version so the stored document is clean.

Exit codes:
  0 - No issues, or all issues fixed
  1 - Issues found`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "write the repaired track back")
	return cmd
}

func runCheck(opts *CheckOptions, id string, cmd *cobra.Command) error {
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	snap, err := st.LoadTrack(cmd.Context(), id)
	if err != nil {
		return f.Fail("failed to load track", err)
	}

	repaired, kept := fault.Split(snap.Issues)
	res := CheckResult{ID: id, Version: snap.Version, Issues: snap.Issues, Open: kept}
	if res.Issues == nil {
		res.Issues = []fault.Issue{}
	}
	if res.Open == nil {
		res.Open = []fault.Issue{}
	}
	if opts.Fix && len(repaired) > 0 {
		saved, err := st.SaveTrack(cmd.Context(), snap)
		if err != nil {
			return f.Fail("failed to save repaired track", err)
		}
		res.Version = saved.Version
		res.Fixed = true
	}

	if err := f.Success(res, func(w io.Writer) {
		switch {
		case len(res.Issues) == 0:
			fmt.Fprintf(w, "✓ %s: no issues (version %d)\n", id, res.Version)
		case res.Fixed:
			fmt.Fprintf(w, "%s: fixed %d issue(s), now version %d\n", id, len(repaired), res.Version)
			printIssues(w, repaired)
			if len(kept) > 0 {
				fmt.Fprintf(w, "%s: %d issue(s) still open\n", id, len(kept))
				printIssues(w, kept)
			}
		case opts.Fix:
			fmt.Fprintf(w, "%s: %d issue(s) cannot be repaired automatically\n", id, len(kept))
			printIssues(w, kept)
		default:
			fmt.Fprintf(w, "%s: %d issue(s) (run with --fix to write the repaired track)\n", id, len(res.Issues))
			printIssues(w, res.Issues)
		}
	}); err != nil {
		return err
	}
	if len(res.Open) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d issue(s) still open", id, len(res.Open)))
	}
	if len(res.Issues) > 0 && !res.Fixed {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d issue(s)", id, len(res.Issues)))
	}
	return nil
}
