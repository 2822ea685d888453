package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// isYAMLPath reports whether path names a YAML document.
func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readDocument reads a track document as JSON. YAML input is only
// re-encoded; the store checks the schema and repairs either form the same
// way.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isYAMLPath(path) {
		return data, nil
	}
	return tree.YAMLToJSON(data)
}

// ImportResult is the JSON payload of import.
type ImportResult struct {
	ID      string        `json:"id"`
	Version int64         `json:"version"`
	ETag    string        `json:"etag"`
	Issues  []fault.Issue `json:"issues,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a track document",
		Long: `Import a track from a JSON or YAML document.

A track with the same id is overwritten and gets a new version; otherwise
the track is created. Drift in the document (stale kinds, gaps in choice
ids, dangling answer keys) is repaired and reported.

Examples:
  coursetree import intro.json
  coursetree import --db ./course.db intro.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	data, err := readDocument(path)
	if err != nil {
		return f.Fail("failed to read document", err)
	}

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.ImportDocument(cmd.Context(), data)
	if err != nil {
		return f.Fail("failed to import document", err)
	}
	issues := snap.Issues

	res := ImportResult{ID: snap.Track.ID, Version: snap.Version, ETag: snap.ETag, Issues: issues}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "Imported track %s (version %d)\n", res.ID, res.Version)
		printIssues(w, issues)
	})
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	YAML   bool
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <track-id>",
		Short: "Export a track document",
		Long: `Write a track's document to stdout or a file.

JSON output is the canonical document, indented. --yaml writes the YAML
authoring form, which import reads back.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "write YAML instead of JSON")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runExport(opts *ExportOptions, id string, cmd *cobra.Command) error {
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

	data, err := encodeExport(snap.Track, opts.YAML)
	if err != nil {
		return f.Fail("failed to encode track", err)
	}

	if opts.Output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	f.VerboseLog("wrote %s (version %d)", opts.Output, snap.Version)
	return nil
}

func encodeExport(t tree.Track, asYAML bool) ([]byte, error) {
	if asYAML {
		return tree.EncodeYAML(t)
	}
	raw, err := tree.Encode(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func printIssues(w io.Writer, issues []fault.Issue) {
	for _, is := range issues {
		fmt.Fprintf(w, "  %s\n", is)
	}
}
