package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/testutil"
)

// testDB creates a database holding testutil.SampleTrack(ids...) and returns
// its path.
func testDB(t *testing.T, ids ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	for _, id := range ids {
		_, err := st.CreateTrack(context.Background(), testutil.SampleTrack(id))
		require.NoError(t, err)
	}
	return path
}

// overwriteDocument replaces a stored document without going through the
// store, the way an older editor would have left it.
func overwriteDocument(t *testing.T, dbPath, id, doc string) {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Exec(`UPDATE tracks SET document = ? WHERE id = ?`, doc, id)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeData unmarshals the data field of a JSON CLI response into T.
func decodeData[T any](t *testing.T, out string) (CLIResponse, T) {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)

	var data T
	if len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}, data
}

// keptDoc has two correct options on a single-answer question, which the
// loader reports but cannot repair.
const keptDoc = `{"id":"t1","name":"Kept","groups":[{"id":"g1","title":"G","presentation":{"mode":"icon","icon":"flag"},"stages":[{"id":"s1","title":"S","questions":[{"id":"q1","kind":"select","prompt":"P","options":[{"id":"1","text":"a"},{"id":"2","text":"b"}],"correct_options":["1","2"]}]}]}]}`

const driftedDoc = `{"id":"t1","name":"Drift","groups":[{"id":"g1","title":"G","presentation":{"mode":"icon","icon":"flag"},"stages":[{"id":"s1","title":"S","questions":[{"id":"q1","kind":"select","prompt":"P","options":[{"id":"1","text":"a"},{"id":"3","text":"b"}],"correct_options":["3"]}]}]}]}`
