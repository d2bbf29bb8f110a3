package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("1;"), 0644))
	}
}

func TestExpand_Directory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a.js",
		"lib/b.mjs",
		"lib/c.cjs",
		"readme.md",
		"styles.css",
	)

	refs, err := Expand([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "lib", "b.mjs"),
		filepath.Join(root, "lib", "c.cjs"),
	}, refs)
}

func TestExpand_SkipsNodeModulesAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a.js",
		"node_modules/dep/index.js",
		"vendor/lib.js",
		".git/hook.js",
	)

	refs, err := Expand([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.js")}, refs)
}

func TestExpand_Glob(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.js", "b.js", "c.txt")

	refs, err := Expand([]string{filepath.Join(root, "*")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "b.js"),
	}, refs)
}

func TestExpand_URLPassthrough(t *testing.T) {
	refs, err := Expand([]string{"https://cdn.example.com/app.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/app.js"}, refs)
}

func TestExpand_PlainFilePassthrough(t *testing.T) {
	// A nonexistent plain path passes through; the loader reports the
	// missing file so the error lands in that unit's result slot.
	refs, err := Expand([]string{"does-not-exist.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"does-not-exist.js"}, refs)
}

func TestExpand_PreservesInputOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "z.js", "a.js")

	refs, err := Expand([]string{
		filepath.Join(root, "z.js"),
		"https://cdn.example.com/m.js",
		filepath.Join(root, "a.js"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "z.js"),
		"https://cdn.example.com/m.js",
		filepath.Join(root, "a.js"),
	}, refs)
}

func TestIsJavaScriptFile(t *testing.T) {
	assert.True(t, IsJavaScriptFile("a.js"))
	assert.True(t, IsJavaScriptFile("a.MJS"))
	assert.True(t, IsJavaScriptFile("a.cjs"))
	assert.False(t, IsJavaScriptFile("a.ts"))
	assert.False(t, IsJavaScriptFile("a.json"))
}
