package magetasks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_CreatesBinDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Setenv("PWD", tmpDir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	require.NoError(t, Initialize())

	assert.DirExists(t, filepath.Join(tmpDir, "bin"))
	wantRoot, _ := filepath.EvalSymlinks(tmpDir)
	gotRoot, _ := filepath.EvalSymlinks(ProjectRoot)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestLDFlags_StampsVersionPackage(t *testing.T) {
	t.Parallel()

	built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	flags := LDFlags("v1.2.0", "abc123", built)

	assert.True(t, strings.HasPrefix(flags, "-s -w "))
	assert.Contains(t, flags, "-X 'github.com/dkoosis/tcr/internal/version.Version=v1.2.0'")
	assert.Contains(t, flags, "-X 'github.com/dkoosis/tcr/internal/version.CommitHash=abc123'")
	assert.Contains(t, flags, "BuildDate=2026-01-02T03:04:05Z'")
}

func TestPrintHeaders_WriteToOut(t *testing.T) {
	var buf strings.Builder
	old := Out
	Out = &buf
	t.Cleanup(func() { Out = old })

	PrintH1Header("tcr QA")
	PrintH2Header("Tests")
	PrintSuccess("done")

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("=", 80))
	assert.Contains(t, out, "tcr QA")
	assert.Contains(t, out, "=== Tests ===")
	assert.Contains(t, out, "✅ done")
}
