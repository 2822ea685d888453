package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/session"
	"github.com/roach88/coursetree/internal/tree"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	KeepGoing bool
}

// StepReport is the outcome of one mutation in an apply run.
type StepReport struct {
	Op      string `json:"op"`
	Outcome string `json:"outcome"` // "ok" or the fault code
	Version int64  `json:"version"`
	Error   string `json:"error,omitempty"`
	// Args are the arguments as committed, generated ids included.
	Args json.RawMessage `json:"args,omitempty"`
}

// ApplyResult is the JSON payload of apply.
type ApplyResult struct {
	ID      string       `json:"id"`
	Version int64        `json:"version"`
	Steps   []StepReport `json:"steps"`
	Failed  int          `json:"failed"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <track-id> <mutations-file>",
		Short: "Apply a list of mutations to a track",
		Long: `Apply mutations from a YAML file to a stored track, one commit each.

The file is a list of operations:

  - op: add_stage_group
    args: {title: Week 1, icon: calendar}
  - op: remove_choice
    args: {group_id: g1, stage_id: s1, question_id: q1, collection: options, choice_id: "2"}

Application stops at the first rejected mutation unless --keep-going is set.
Ids of created nodes are generated.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue after a rejected mutation")
	return cmd
}

// loadMutations reads a YAML list of mutation envelopes.
func loadMutations(path string) ([]tree.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envs []tree.Envelope
	if err := yaml.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(envs) == 0 {
		return nil, fmt.Errorf("%s: no mutations", path)
	}
	return envs, nil
}

// resolvedArgs re-encodes m so the report shows the ids the session
// committed rather than the empty ones in the file.
func resolvedArgs(m tree.Mutation) json.RawMessage {
	env, err := tree.Wrap(m)
	if err != nil {
		return nil
	}
	return env.Args
}

func runApply(opts *ApplyOptions, id, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	envs, err := loadMutations(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read mutations", err)
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := session.Open(cmd.Context(), st, id, session.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	if err != nil {
		return f.Fail("failed to open track", err)
	}

	res := ApplyResult{ID: id, Steps: make([]StepReport, 0, len(envs))}
	for i, env := range envs {
		report := StepReport{Op: env.Op, Outcome: "ok"}
		m, err := env.Mutation()
		if err == nil {
			m = tree.AssignID(m, tree.UUIDv7Generator{})
			var snap tree.Snapshot
			snap, err = sess.Apply(cmd.Context(), m)
			report.Version = snap.Version
			if err == nil {
				report.Args = resolvedArgs(m)
			}
		} else {
			report.Version = sess.Acknowledged().Version
		}
		if err != nil {
			report.Outcome = string(fault.CodeOf(err))
			report.Error = err.Error()
			res.Failed++
		}
		res.Steps = append(res.Steps, report)
		f.VerboseLog("[%d] %s: %s %s", i, env.Op, report.Outcome, report.Args)

		if err != nil && !opts.KeepGoing {
			break
		}
	}
	res.Version = sess.Acknowledged().Version

	if err := f.Success(res, func(w io.Writer) {
		for i, s := range res.Steps {
			if s.Error == "" {
				fmt.Fprintf(w, "✓ [%d] %s (version %d)\n", i, s.Op, s.Version)
			} else {
				fmt.Fprintf(w, "✗ [%d] %s: %s\n", i, s.Op, s.Error)
			}
		}
		fmt.Fprintf(w, "\n%s is at version %d\n", id, res.Version)
	}); err != nil {
		return err
	}
	if res.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d mutation(s) rejected", res.Failed))
	}
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <track-id>",
		Short: "List the accepted revisions of a track",
		Long: `List every accepted write of a track, newest first.

Any listed version can be printed with: coursetree show <track-id> --version N`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, id string, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	revs, err := st.Revisions(cmd.Context(), id)
	if err != nil {
		return f.Fail("failed to list revisions", err)
	}
	return f.Success(revs, func(w io.Writer) {
		for _, r := range revs {
			fmt.Fprintf(w, "%4d  %s\n", r.Version, r.ETag)
		}
	})
}
