package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/tree"
)

func TestTracks_ListJSON(t *testing.T) {
	opts := &RootOptions{Format: "json", Database: testDB(t, "t1", "t2")}

	out, err := execute(t, NewTracksCommand(opts))
	require.NoError(t, err)

	resp, tracks := decodeData[[]tree.Summary](t, out)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, tracks, 2)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, 4, tracks[0].Questions)
	assert.Equal(t, int64(1), tracks[0].Version)
}

func TestTracks_Empty(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t)}

	out, err := execute(t, NewTracksCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No tracks.")
}

func TestShow_Outline(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t, "t1")}

	out, err := execute(t, NewShowCommand(opts), "t1")
	require.NoError(t, err)
	assert.Contains(t, out, `t1  "Sample track"  (version 1)`)
	assert.Contains(t, out, "[icon flag]")
	assert.Contains(t, out, "[image groups/g2.png]")
	assert.Contains(t, out, "q-match")
}

func TestShow_NotFound(t *testing.T) {
	opts := &RootOptions{Format: "json", Database: testDB(t, "t1")}

	out, err := execute(t, NewShowCommand(opts), "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, _ := decodeData[any](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "missing", resp.Error.ID)
}

func TestShow_Revision(t *testing.T) {
	db := testDB(t, "t1")
	opts := &RootOptions{Format: "json", Database: db}

	mutations := filepath.Join(t.TempDir(), "rename.yaml")
	require.NoError(t, os.WriteFile(mutations, []byte("- op: edit_track\n  args: {name: Renamed}\n"), 0o644))
	_, err := execute(t, NewApplyCommand(opts), "t1", mutations)
	require.NoError(t, err)

	out, err := execute(t, NewShowCommand(opts), "t1", "--version", "1")
	require.NoError(t, err)
	_, view := decodeData[TrackView](t, out)
	assert.Equal(t, int64(1), view.Version)
	assert.Equal(t, "Sample track", view.Document.Name)

	out, err = execute(t, NewShowCommand(opts), "t1")
	require.NoError(t, err)
	_, view = decodeData[TrackView](t, out)
	assert.Equal(t, int64(2), view.Version)
	assert.Equal(t, "Renamed", view.Document.Name)
}

func TestCreate_AndDuplicate(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t)}

	out, err := execute(t, NewCreateCommand(opts), "intro", "--name", "Introduction")
	require.NoError(t, err)
	assert.Contains(t, out, "Created track intro (version 1)")

	_, err = execute(t, NewCreateCommand(opts), "intro", "--name", "Again")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCreate_RequiresName(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t)}

	_, err := execute(t, NewCreateCommand(opts), "intro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestDelete(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t, "t1", "t2")}

	out, err := execute(t, NewDeleteCommand(opts), "t2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted track t2")

	// The last remaining track is protected.
	out, err = execute(t, NewDeleteCommand(opts), "t1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "VALIDATION_FAILED")
}

func TestHistory(t *testing.T) {
	db := testDB(t, "t1")
	opts := &RootOptions{Format: "json", Database: db}

	mutations := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(mutations, []byte(`
- op: edit_track
  args: {name: One}
- op: edit_track
  args: {name: Two}
`), 0o644))
	_, err := execute(t, NewApplyCommand(opts), "t1", mutations)
	require.NoError(t, err)

	out, err := execute(t, NewHistoryCommand(opts), "t1")
	require.NoError(t, err)
	_, revs := decodeData[[]store.Revision](t, out)
	require.Len(t, revs, 3)
	assert.Equal(t, int64(3), revs[0].Version)
	assert.Equal(t, int64(1), revs[2].Version)
	assert.NotEqual(t, revs[0].ETag, revs[1].ETag)
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			src := &RootOptions{Format: "text", Database: testDB(t, "t1")}
			file := filepath.Join(t.TempDir(), "t1"+ext)

			args := []string{"t1", "-o", file}
			if ext == ".yaml" {
				args = append(args, "--yaml")
			}
			_, err := execute(t, NewExportCommand(src), args...)
			require.NoError(t, err)

			dst := &RootOptions{Format: "json", Database: testDB(t)}
			out, err := execute(t, NewImportCommand(dst), file)
			require.NoError(t, err)
			_, res := decodeData[ImportResult](t, out)
			assert.Equal(t, "t1", res.ID)
			assert.Equal(t, int64(1), res.Version)
			assert.Empty(t, res.Issues)

			// Same canonical document, same etag.
			out, err = execute(t, NewShowCommand(&RootOptions{Format: "json", Database: src.Database}), "t1")
			require.NoError(t, err)
			_, view := decodeData[TrackView](t, out)
			assert.Equal(t, view.ETag, res.ETag)
		})
	}
}

func TestImport_OverwritesAndReportsDrift(t *testing.T) {
	opts := &RootOptions{Format: "json", Database: testDB(t, "t1")}
	file := filepath.Join(t.TempDir(), "drift.json")
	require.NoError(t, os.WriteFile(file, []byte(driftedDoc), 0o644))

	out, err := execute(t, NewImportCommand(opts), file)
	require.NoError(t, err)
	_, res := decodeData[ImportResult](t, out)
	assert.Equal(t, int64(2), res.Version)
	require.Len(t, res.Issues, 1)
	assert.True(t, res.Issues[0].Repaired)
	assert.Equal(t, "groups/g1/stages/s1/questions/q1/options", res.Issues[0].Path)
}

func TestImport_SchemaViolation(t *testing.T) {
	opts := &RootOptions{Format: "json", Database: testDB(t)}
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"id":"t1","name":"x","groups":"nope"}`), 0o644))

	out, err := execute(t, NewImportCommand(opts), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp, _ := decodeData[any](t, out)
	assert.Equal(t, "DATA_INTEGRITY", resp.Error.Code)
}

func TestImport_YAMLSchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing presentation",
			doc: `id: t1
name: Intro
groups:
  - id: g1
    title: G
    stages: []
`,
		},
		{
			name: "presentation not a mapping",
			doc: `id: t1
name: Intro
groups:
  - id: g1
    title: G
    presentation: star
    stages: []
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &RootOptions{Format: "json", Database: testDB(t)}
			file := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(file, []byte(tt.doc), 0o644))

			out, err := execute(t, NewImportCommand(opts), file)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			resp, _ := decodeData[any](t, out)
			assert.Equal(t, "DATA_INTEGRITY", resp.Error.Code)

			_, err = execute(t, NewShowCommand(opts), "t1")
			require.Error(t, err)
		})
	}
}

func TestExport_Stdout(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t, "t1")}

	out, err := execute(t, NewExportCommand(opts), "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"groups\": [\n")
	assert.Contains(t, out, `"correct_options": [`)
}
