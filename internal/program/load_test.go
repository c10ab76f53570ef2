package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const closureSource = `
relation: {
	edge: {columns: {src: "INTEGER", dst: "INTEGER"}}
	path: {
		columns: {src: "INTEGER", dst: "INTEGER"}
		distinct: true
	}
}

fact: edge: [[1, 2], [2, 3]]

rule: closure: "path(x, z) <= edge(x, z) | (edge(x, y) & path(y, z))"
`

func TestLoadSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "closure.cue", closureSource)

	prog, errs := Load(path, LoadModeFailFast)
	require.Empty(t, errs)

	assert.Len(t, prog.Relations, 2)
	assert.Len(t, prog.Facts, 1)
	assert.Len(t, prog.Rules, 1)
}

func TestLoadDirectoryMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.cue", `package datalite

relation: {
	edge: {columns: {src: "INTEGER", dst: "INTEGER"}}
	path: {
		columns: {src: "INTEGER", dst: "INTEGER"}
		distinct: true
	}
}
`)
	writeFile(t, dir, "data.cue", `package datalite

fact: edge: [[1, 2], [2, 3]]

rule: closure: "path(x, z) <= edge(x, z) | (edge(x, y) & path(y, z))"
`)

	prog, errs := Load(dir, LoadModeFailFast)
	require.Empty(t, errs)

	assert.Len(t, prog.Relations, 2)
	require.Len(t, prog.Facts, 1)
	assert.Equal(t, "edge", prog.Facts[0].Relation)
	require.Len(t, prog.Rules, 1)
	assert.Equal(t, "closure", prog.Rules[0].Name)
}

func TestLoadMissingPath(t *testing.T) {
	_, errs := Load(filepath.Join(t.TempDir(), "absent"), LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDirectoryWithoutCUEFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "not a program")

	_, errs := Load(dir, LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadNonCUEFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "not a program")

	_, errs := Load(path, LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not a CUE file")
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.cue", "relation: {")

	_, errs := Load(path, LoadModeFailFast)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)
}

func TestLoadThenBind(t *testing.T) {
	path := writeFile(t, t.TempDir(), "closure.cue", closureSource)

	prog, errs := Load(path, LoadModeFailFast)
	require.Empty(t, errs)

	b, bindErrs := Bind(prog)
	require.Empty(t, bindErrs)
	require.Len(t, b.Rules, 1)
	assert.Contains(t, b.Rules[0].Plan.Text, "INSERT INTO path")

	assert.Len(t, prog.Fingerprint(), 64)
}
