package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursetree/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_CleanDocument(t *testing.T) {
	src := &RootOptions{Format: "text", Database: testDB(t, "t1")}
	file := filepath.Join(t.TempDir(), "t1.json")
	_, err := execute(t, NewExportCommand(src), "t1", "-o", file)
	require.NoError(t, err)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), file)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidate_ReportsImportETag(t *testing.T) {
	for _, doc := range []struct{ name, ext string }{{"drifted", ".json"}, {"exported", ".yaml"}} {
		t.Run(doc.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "t1"+doc.ext)
			if doc.ext == ".json" {
				require.NoError(t, os.WriteFile(file, []byte(driftedDoc), 0o644))
			} else {
				_, err := execute(t, NewExportCommand(&RootOptions{Format: "text", Database: testDB(t, "t1")}), "t1", "-o", file, "--yaml")
				require.NoError(t, err)
			}

			out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), file)
			require.NoError(t, err)
			_, res := decodeData[ValidationResult](t, out)
			require.NotEmpty(t, res.ETag)

			out, err = execute(t, NewImportCommand(&RootOptions{Format: "json", Database: testDB(t)}), file)
			require.NoError(t, err)
			_, imported := decodeData[ImportResult](t, out)
			assert.Equal(t, imported.ETag, res.ETag)
		})
	}
}

func TestValidate_DriftIsReportedNotFatal(t *testing.T) {
	file := writeFile(t, "drift.json", driftedDoc)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), file)
	require.NoError(t, err)
	_, res := decodeData[ValidationResult](t, out)
	assert.True(t, res.Valid)
	require.Len(t, res.Issues, 1)

	_, err = execute(t, NewValidateCommand(&RootOptions{Format: "json"}), file, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_YAML(t *testing.T) {
	file := writeFile(t, "track.yaml", `
id: t1
name: From YAML
groups:
  - id: g1
    title: G
    presentation: {mode: icon, icon: flag}
    stages:
      - id: s1
        title: S
        questions:
          - id: q1
            kind: boolean
            prompt: Is it?
            answer: false
`)
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), file)
	require.NoError(t, err)
	_, res := decodeData[ValidationResult](t, out)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Issues)
}

func TestValidate_SchemaViolation(t *testing.T) {
	file := writeFile(t, "bad.yaml", "id: t1\nname: x\ngroups:\n  - title: no id\n")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp, _ := decodeData[any](t, out)
	assert.Equal(t, "DATA_INTEGRITY", resp.Error.Code)
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/track.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheck_CleanTrack(t *testing.T) {
	opts := &RootOptions{Format: "text", Database: testDB(t, "t1")}

	out, err := execute(t, NewCheckCommand(opts), "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ t1: no issues (version 1)")
}

func TestCheck_ReportsAndFixes(t *testing.T) {
	db := testDB(t, "t1")
	overwriteDocument(t, db, "t1", driftedDoc)
	opts := &RootOptions{Format: "json", Database: db}

	out, err := execute(t, NewCheckCommand(opts), "t1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	_, res := decodeData[CheckResult](t, out)
	assert.Len(t, res.Issues, 1)
	assert.False(t, res.Fixed)

	out, err = execute(t, NewCheckCommand(opts), "t1", "--fix")
	require.NoError(t, err)
	_, res = decodeData[CheckResult](t, out)
	assert.True(t, res.Fixed)
	assert.Equal(t, int64(2), res.Version)

	out, err = execute(t, NewCheckCommand(opts), "t1")
	require.NoError(t, err)
	_, res = decodeData[CheckResult](t, out)
	assert.Empty(t, res.Issues)
}

func TestCheck_FixLeavesKeptIssuesOpen(t *testing.T) {
	db := testDB(t, "t1")
	overwriteDocument(t, db, "t1", keptDoc)
	opts := &RootOptions{Format: "json", Database: db}

	out, err := execute(t, NewCheckCommand(opts), "t1", "--fix")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	_, res := decodeData[CheckResult](t, out)
	assert.False(t, res.Fixed)
	assert.Equal(t, int64(1), res.Version)
	require.Len(t, res.Open, 1)
	assert.Equal(t, "groups/g1/stages/s1/questions/q1/correct_options", res.Open[0].Path)

	out, err = execute(t, NewHistoryCommand(opts), "t1")
	require.NoError(t, err)
	_, revs := decodeData[[]store.Revision](t, out)
	assert.Len(t, revs, 1, "nothing was written")
}
