package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/xymatic/modinit/internal/errors"
)

const targetDir = "/work"

type emitFixture struct {
	target afero.Fs
	logs   *bytes.Buffer
}

func newFixture() *emitFixture {
	return &emitFixture{
		target: afero.NewMemMapFs(),
		logs:   &bytes.Buffer{},
	}
}

func (f *emitFixture) emit(t *testing.T, source fstest.MapFS, mutate ...func(*EmitOptions)) (*Result, error) {
	t.Helper()

	opts := EmitOptions{
		Source:      source,
		Target:      f.target,
		TargetDir:   targetDir,
		Params:      testParams(),
		Logger:      log.NewWithOptions(f.logs, log.Options{}),
		Concurrency: 4,
	}
	for _, m := range mutate {
		m(&opts)
	}

	return NewEmitter(opts).Emit(context.Background())
}

func (f *emitFixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := afero.ReadFile(f.target, filepath.Join(targetDir, rel))
	require.NoError(t, err)
	return string(data)
}

func (f *emitFixture) exists(t *testing.T, rel string) bool {
	t.Helper()
	ok, err := afero.Exists(f.target, filepath.Join(targetDir, rel))
	require.NoError(t, err)
	return ok
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestEmit_PlaceholderInFilename(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"{{varName}}.js": file(`module.exports = "{{name}}"`),
	}

	res, err := f.emit(t, source, func(o *EmitOptions) {
		o.Params = Params{"varName": "foo", "name": "foo-mod"}
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"foo.js"}, res.Created)
	assert.Equal(t, `module.exports = "foo-mod"`, f.read(t, "foo.js"))
	assert.False(t, f.exists(t, "{{varName}}.js"))
}

func TestEmit_ExistingFileIsNeverOverwritten(t *testing.T) {
	f := newFixture()
	existing := []byte(`{"name":"mine"}`)
	require.NoError(t, afero.WriteFile(f.target, filepath.Join(targetDir, "package.json"), existing, 0o644))

	source := fstest.MapFS{
		"package.json": file(`{"name": "{{name}}"}`),
		"README.md":    file("# {{name}}\n"),
	}

	res, err := f.emit(t, source)

	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "ignoring: package.json")
	assert.Equal(t, string(existing), f.read(t, "package.json"))
	assert.Equal(t, []string{"package.json"}, res.Skipped)
	assert.Equal(t, []string{"README.md"}, res.Created)
}

func TestEmit_ExistingDirectoryCountsAsExisting(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.target.MkdirAll(filepath.Join(targetDir, "docs.md"), 0o755))

	res, err := f.emit(t, fstest.MapFS{"docs.md": file("x")})

	require.NoError(t, err)
	assert.Equal(t, []string{"docs.md"}, res.Skipped)
}

func TestEmit_ReservedRootFilesExcluded(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"index.js":      file("bootstrap"),
		"_test.js":      file("bootstrap test"),
		"lib/index.js":  file("nested index"),
		"test/_test.js": file("test('{{testDescription}}')"),
	}

	res, err := f.emit(t, source)

	require.NoError(t, err)
	assert.Equal(t, []string{"_test.js", "index.js"}, res.Excluded)
	assert.Equal(t, []string{"lib/index.js", "test/test.js"}, res.Created)
	assert.False(t, f.exists(t, "index.js"))
	assert.False(t, f.exists(t, "_test.js"))
	assert.False(t, f.exists(t, "test.js"))
	assert.Equal(t, "test('does foo')", f.read(t, "test/test.js"))
}

func TestEmit_MaskedDotfilesUnmasked(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"_.gitignore":     file("node_modules\n"),
		"_.npmignore":     file("test/\n"),
		"sub/_.gitignore": file("*.log\n"),
	}

	res, err := f.emit(t, source)

	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", ".npmignore", "sub/.gitignore"}, res.Created)
	assert.Equal(t, "node_modules\n", f.read(t, ".gitignore"))
	assert.Equal(t, "test/\n", f.read(t, ".npmignore"))
	assert.False(t, f.exists(t, "_.gitignore"))
}

func TestEmit_JSONNormalized(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"pkg.json": file(`{"name":"{{name}}",   "keywords": {{tags}}, "nested": {"a":[1,2.50,true,null]}}`),
	}

	_, err := f.emit(t, source)
	require.NoError(t, err)

	got := f.read(t, "pkg.json")
	want := `{
  "name": "foo-mod",
  "keywords": [
    "foo",
    "bar"
  ],
  "nested": {
    "a": [
      1,
      2.50,
      true,
      null
    ]
  }
}
`
	assert.Equal(t, want, got)
	assert.JSONEq(t, `{"name":"foo-mod","keywords":["foo","bar"],"nested":{"a":[1,2.5,true,null]}}`, got)
}

func TestEmit_InvalidJSONIsFatal(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"package.json": file(`{"keywords": {{missing}}}`),
	}

	_, err := f.emit(t, source)

	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrTemplate))
	assert.Contains(t, err.Error(), "package.json")
	assert.False(t, f.exists(t, "package.json"))
}

func TestEmit_FatalErrorStopsPendingEntries(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"a.txt":  file("first"),
		"b.json": file("{not json"),
		"c.txt":  file("never"),
	}

	res, err := f.emit(t, source, func(o *EmitOptions) { o.Concurrency = 1 })

	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"a.txt"}, res.Created, "files written before the failure remain")
	assert.True(t, f.exists(t, "a.txt"))
	assert.False(t, f.exists(t, "c.txt"))
}

func TestEmit_WriteFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.target = afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := f.emit(t, fstest.MapFS{"nested/file.txt": file("x")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrIO))
	assert.Contains(t, err.Error(), "nested")
}

func TestEmit_StrictPolicyFailsOnMissingKey(t *testing.T) {
	f := newFixture()

	_, err := f.emit(t, fstest.MapFS{"a.txt": file("{{nope}}")}, func(o *EmitOptions) {
		o.Policy = MissingError
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrTemplate))
	assert.Contains(t, err.Error(), "nope")
}

func TestEmit_EmptyPolicyBlanksMissingKey(t *testing.T) {
	f := newFixture()

	_, err := f.emit(t, fstest.MapFS{"a.txt": file("[{{nope}}]")})

	require.NoError(t, err)
	assert.Equal(t, "[]", f.read(t, "a.txt"))
}

func TestEmit_RejectsDestinationsOutsideTarget(t *testing.T) {
	tests := []struct {
		name   string
		source string
		params Params
	}{
		{"parent traversal", "{{up}}/escape.txt", Params{"up": ".."}},
		{"empty filename", "dir/{{blank}}", Params{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.emit(t, fstest.MapFS{tt.source: file("x")}, func(o *EmitOptions) {
				o.Params = tt.params
			})

			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrTemplate))
		})
	}
}

func TestEmit_RenderedCollisionSkipsSecond(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"{{a}}.txt": file("from a"),
		"{{b}}.txt": file("from b"),
	}

	res, err := f.emit(t, source, func(o *EmitOptions) {
		o.Params = Params{"a": "same", "b": "same"}
		o.Concurrency = 1
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"same.txt"}, res.Created)
	assert.Equal(t, []string{"same.txt"}, res.Skipped)
	assert.Equal(t, "from a", f.read(t, "same.txt"))
	assert.Contains(t, f.logs.String(), "ignoring: same.txt")
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"lib/{{varName}}.js": file("x"),
		"_.gitignore":        file("y"),
	}

	res, err := f.emit(t, source, func(o *EmitOptions) { o.DryRun = true })

	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{".gitignore", "lib/fooMod.js"}, res.Created)
	assert.False(t, f.exists(t, "lib"))
	assert.False(t, f.exists(t, ".gitignore"))
}

func TestEmit_ManyEntriesConcurrently(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{}
	for i := 0; i < 50; i++ {
		source[fmt.Sprintf("dir%d/shared/file%02d.txt", i%3, i)] = file("{{name}}")
	}

	res, err := f.emit(t, source, func(o *EmitOptions) { o.Concurrency = 8 })

	require.NoError(t, err)
	assert.Len(t, res.Created, 50)
	for _, rel := range res.Created {
		assert.Equal(t, "foo-mod", f.read(t, rel))
	}
}

func TestEmit_SecondRunSkipsEverything(t *testing.T) {
	f := newFixture()
	source := fstest.MapFS{
		"{{varName}}.js": file("module.exports = {{varName}}"),
		"_.gitignore":    file("node_modules\n"),
		"test/_test.js":  file("test"),
		"package.json":   file(`{"name":"{{name}}"}`),
	}

	first, err := f.emit(t, source)
	require.NoError(t, err)
	require.Len(t, first.Created, 4)

	// A user edit between runs must survive the second run.
	require.NoError(t, afero.WriteFile(f.target, filepath.Join(targetDir, "fooMod.js"), []byte("edited"), 0o644))
	f.logs.Reset()

	second, err := f.emit(t, source)
	require.NoError(t, err)

	assert.Empty(t, second.Created)
	assert.Equal(t, first.Created, second.Skipped)
	assert.Equal(t, "edited", f.read(t, "fooMod.js"))
	for _, rel := range first.Created {
		assert.Contains(t, f.logs.String(), "ignoring: "+rel)
	}
}

func TestEmit_CanceledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmitter(EmitOptions{
		Source:    fstest.MapFS{"a.txt": file("x")},
		Target:    f.target,
		TargetDir: targetDir,
		Params:    testParams(),
		Logger:    log.NewWithOptions(f.logs, log.Options{}),
	}).Emit(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.exists(t, "a.txt"))
}

func TestDiscover_LexicalOrder(t *testing.T) {
	source := fstest.MapFS{
		"b.txt":     file(""),
		"a/z.txt":   file(""),
		"a/b/c.txt": file(""),
		"c.txt":     file(""),
	}

	entries, err := Discover(source)
	require.NoError(t, err)

	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "b.txt", "c.txt"}, rels)
	assert.Equal(t, "c.txt", entries[0].Name)
}

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"object", `{"a":1}`, "{\n  \"a\": 1\n}\n", false},
		{"already pretty with tabs", "{\n\t\"a\": [ ]\n}", "{\n  \"a\": []\n}\n", false},
		{"scalar", `"x"`, "\"x\"\n", false},
		{"html kept literal", `{"u":"<a>&"}`, "{\n  \"u\": \"<a>&\"\n}\n", false},
		{"empty input", "", "", true},
		{"trailing comma", `{"a":1,}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
