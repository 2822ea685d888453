package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// NewTracksCommand creates the tracks command.
func NewTracksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tracks",
		Short:         "List tracks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracks(rootOpts, cmd)
		},
	}
}

func runTracks(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	tracks, err := st.ListTracks(cmd.Context())
	if err != nil {
		return f.Fail("failed to list tracks", err)
	}
	return f.Success(tracks, func(w io.Writer) {
		if len(tracks) == 0 {
			fmt.Fprintln(w, "No tracks.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tGROUPS\tSTAGES\tQUESTIONS\tVERSION")
		for _, s := range tracks {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", s.ID, s.Name, s.Groups, s.Stages, s.Questions, s.Version)
		}
		tw.Flush()
	})
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Version int64 // 0 means the current version
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <track-id>",
		Short: "Print a track's outline",
		Long: `Print a track as an outline of groups, stages and questions.

With --version an earlier accepted revision is shown instead.

Examples:
  coursetree show intro
  coursetree show intro --version 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Version, "version", 0, "show this revision instead of the current track")
	return cmd
}

// TrackView is the JSON payload of show.
type TrackView struct {
	Version  int64         `json:"version"`
	ETag     string        `json:"etag"`
	Issues   []fault.Issue `json:"issues,omitempty"`
	Document tree.Document `json:"document"`
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	var snap tree.Snapshot
	if opts.Version > 0 {
		snap, err = st.LoadRevision(cmd.Context(), id, opts.Version)
	} else {
		snap, err = st.LoadTrack(cmd.Context(), id)
	}
	if err != nil {
		return f.Fail("failed to load track", err)
	}

	view := TrackView{Version: snap.Version, ETag: snap.ETag, Issues: snap.Issues, Document: tree.ToDocument(snap.Track)}
	return f.Success(view, func(w io.Writer) {
		printOutline(w, snap)
	})
}

func printOutline(w io.Writer, snap tree.Snapshot) {
	t := snap.Track
	fmt.Fprintf(w, "%s  %q  (version %d)\n", t.ID, t.Name, snap.Version)
	for _, g := range t.Groups {
		fmt.Fprintf(w, "  %s  %q  [%s %s]\n", g.ID, g.Title, g.Presentation.Mode, g.Presentation.Value())
		for _, s := range g.Stages {
			fmt.Fprintf(w, "    %s  %q\n", s.ID, s.Title)
			for _, q := range s.Questions {
				fmt.Fprintf(w, "      %s  %-8s  %s\n", q.ID, q.Kind(), q.Prompt)
			}
		}
	}
	if len(snap.Issues) > 0 {
		fmt.Fprintf(w, "%d issue(s) found while loading; run check for details\n", len(snap.Issues))
	}
}

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Name        string
	Description string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "create <track-id>",
		Short:         "Create an empty track",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "track name (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "track description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCreate(opts *CreateOptions, id string, cmd *cobra.Command) error {
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	snap, err := st.CreateTrack(cmd.Context(), tree.Track{ID: id, Name: opts.Name, Description: opts.Description})
	if err != nil {
		return f.Fail("failed to create track", err)
	}
	return f.Success(tree.Summarize(snap), func(w io.Writer) {
		fmt.Fprintf(w, "Created track %s (version %d)\n", id, snap.Version)
	})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <track-id>",
		Short: "Delete a track and its history",
		Long: `Delete a track and every stored revision of it.

The last remaining track cannot be deleted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, id string, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	f := opts.formatter(cmd)
	if err := st.DeleteTrack(cmd.Context(), id); err != nil {
		return f.Fail("failed to delete track", err)
	}
	return f.Success(map[string]string{"deleted": id}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted track %s\n", id)
	})
}
