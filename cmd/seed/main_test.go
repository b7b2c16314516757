package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/service"
)

const dataDir = "../../data"

func TestDryRunPrintsOneLinePerInteraction(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--dry-run", "--data-dir", dataDir, "--db-driver", "sqlite", "--db-path", filepath.Join(t.TempDir(), "unused.db")})
	require.NoError(t, cmd.Execute())

	var lines []service.SeedPreview
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var line service.SeedPreview
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 20)
	assert.Equal(t, int64(1), lines[0].InteractionID)
	assert.True(t, lines[0].Seeded)
}

func TestSeedWritesSQLiteOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	args := []string{"--data-dir", dataDir, "--db-driver", "sqlite", "--db-path", dbPath, "--workers", "2"}

	var first bytes.Buffer
	cmd := newRootCmd(&first)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	var res service.SeedResult
	require.NoError(t, json.Unmarshal(first.Bytes(), &res))
	assert.False(t, res.Skipped)
	assert.Equal(t, 8, res.Accounts)
	assert.Equal(t, 20, res.Insights)
	assert.Equal(t, 10, res.EvalSamples)

	var second bytes.Buffer
	cmd = newRootCmd(&second)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	require.NoError(t, json.Unmarshal(second.Bytes(), &res))
	assert.True(t, res.Skipped)
}
