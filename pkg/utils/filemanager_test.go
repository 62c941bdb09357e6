package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestFileManager(t)

	for _, name := range []string{"a.xlsx", "b.XLSX", "c.csv", "notes.txt", "~$a.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(fm.InputDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(fm.InputDir, "subdir.xlsx"), 0o755))

	files, err := fm.DiscoverInputFiles(".xlsx", ".csv")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"a.xlsx", "b.XLSX", "c.csv"}, names,
		"extension match is case-insensitive; lock files, directories and other extensions are skipped")
}

func TestArchiveInputFileMoves(t *testing.T) {
	fm := newTestFileManager(t)

	src := filepath.Join(fm.InputDir, "campo.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "campo.xlsx"), archived)
	assert.NoFileExists(t, src)
	assert.FileExists(t, archived)
}

func TestArchiveOutputFileCopies(t *testing.T) {
	fm := newTestFileManager(t)

	src := filepath.Join(fm.OutputDir, "resultado.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	archived, err := fm.ArchiveOutputFile(src)
	require.NoError(t, err)

	assert.FileExists(t, src, "the output stays in place")
	assert.FileExists(t, archived)
}

func TestArchiveDisabled(t *testing.T) {
	fm := newTestFileManager(t)
	fm.ArchiveOnSuccess = false

	src := filepath.Join(fm.InputDir, "campo.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.FileExists(t, src)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_processado_{date}.xlsx", map[string]string{
		"original": "campo01",
	})
	assert.True(t, strings.HasPrefix(name, "campo01_processado_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
	assert.Contains(t, name, time.Now().Format("20060102"))

	// The extension is forced when the format omits it.
	name = GenerateOutputFileName("{original}", map[string]string{"original": "x"})
	assert.Equal(t, "x.xlsx", name)

	// {uuid} expands to something unique per call.
	a := GenerateOutputFileName("{uuid}", nil)
	b := GenerateOutputFileName("{uuid}", nil)
	assert.NotEqual(t, a, b)
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path, "no entries, no log file")

	entries := []ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "campo01.xlsx",
		ErrorType:    "MissingColumn",
		ErrorMessage: "required column not found: diameter or circumference",
	}}
	path, err = WriteErrorLog(entries, dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "campo01.xlsx")
	assert.Contains(t, string(data), "MissingColumn")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()

	summary := ProcessingSummary{
		StartTime:       time.Now().Add(-time.Minute),
		EndTime:         time.Now(),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalRows:       42,
		TotalLevels:     3,
		ProcessedFiles: []ProcessedFileInfo{
			{InputFile: "a.xlsx", OutputFile: "a_processado.xlsx", Rows: 42, Levels: 3},
		},
		FailedFilesList: []FailedFileInfo{
			{InputFile: "b.xlsx", ErrorMessage: "input table has no data rows"},
		},
	}

	path, err := WriteSummaryLog(summary, dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total Files:  2")
	assert.Contains(t, text, "a_processado.xlsx")
	assert.Contains(t, text, "input table has no data rows")
}
