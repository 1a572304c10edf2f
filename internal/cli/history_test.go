package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/ir"
)

// seedHistory records three estimates: h_rz_cnot Space, h_rz_cnot Time
// and bell Space, in that order.
func seedHistory(t *testing.T) (string, []string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	var ids []string
	for _, args := range [][]string{
		{"--program", "h_rz_cnot"},
		{"--program", "h_rz_cnot", "--optimization", "Time"},
		{"--program", "bell"},
	} {
		resp := estimateJSON(t, append([]string{specsDir, "--db", db}, args...)...)
		require.True(t, resp.Data.Inserted)
		ids = append(ids, resp.Data.ID)
	}
	return db, ids
}

func historyJSON(t *testing.T, args ...string) []HistoryEntry {
	t.Helper()
	out, err := execute(NewHistoryCommand(&RootOptions{Format: "json"}), args...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestHistoryListsInSeqOrder(t *testing.T) {
	db, ids := seedHistory(t)

	entries := historyJSON(t, "--db", db)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, ids[i], e.ID)
		assert.Equal(t, int64(i+1), e.Result.Seq)
	}
}

func TestHistoryFilters(t *testing.T) {
	db, ids := seedHistory(t)

	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{"program", []string{"--program", "h_rz_cnot"}, ids[:2]},
		{"mode", []string{"--mode", "time"}, ids[1:2]},
		{"program and mode", []string{"--program", "bell", "--mode", "Space"}, ids[2:]},
		{"max distance", []string{"--max-distance", "7"}, ids[2:]},
		{"hardware", []string{"--hardware", "basic_ion"}, nil},
		{"limit", []string{"--limit", "1"}, ids[:1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := historyJSON(t, append([]string{"--db", db}, tt.args...)...)
			got := make([]string, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestHistoryText(t *testing.T) {
	db, _ := seedHistory(t)

	out, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--program", "bell")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "bell")
	assert.NotContains(t, out, "h_rz_cnot")

	out, err = execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--program", "qft")
	require.NoError(t, err)
	assert.Contains(t, out, "No estimates found.")
}

func TestHistoryShowByID(t *testing.T) {
	db, ids := seedHistory(t)

	out, err := execute(NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db, "--id", ids[0])
	require.NoError(t, err)

	var resp struct {
		Data struct {
			ID      string          `json:"id"`
			Request string          `json:"request"`
			Result  ir.ResourceInfo `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ids[0], resp.Data.ID)
	assert.Equal(t, 9, resp.Data.Result.CodeDistance)
	assert.Contains(t, resp.Data.Request, `"optimization":"Space"`)

	_, err = execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--id", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownName)
}

func TestHistoryErrors(t *testing.T) {
	db, _ := seedHistory(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"missing database", []string{"--db", filepath.Join(t.TempDir(), "none.db")}, ErrCodeNotFound},
		{"bad mode", []string{"--db", db, "--mode", "Speed"}, ErrCodeGeneric},
		{"negative limit", []string{"--db", db, "--limit", "-1"}, ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
		})
	}
}

func TestHistoryRequiresDB(t *testing.T) {
	_, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
