package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected Format
	}{
		{"samples.tsv", FormatTSV},
		{"samples.TOML", FormatTOML},
		{"book/novel.txt", FormatText},
		{"magazine/page.html", FormatHTML},
		{"magazine/page.htm", FormatHTML},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			format, err := DetectFormat(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, format)
		})
	}

	_, err := DetectFormat("table.msgpack")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadTSV(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "samples.tsv"),
		"# comment\nbook\tThe child reads a classical novel\n\nmagazine\tHe reads a generonormative magazine\n")

	samples, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "book", samples[0].Label)
	assert.Equal(t, "The child reads a classical novel", samples[0].Text)
	assert.Equal(t, path+":2", samples[0].Source)
	assert.Equal(t, "magazine", samples[1].Label)
}

func TestReadTSVMissingTab(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.tsv"), "book only words\n")
	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestReadTOML(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "samples.toml"), `
[[sample]]
label = "magazine"
text = "In the filthy store they sell magazines"

[[sample]]
label = "book"
text = "The child reads a classical novel"
`)
	samples, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Label: "magazine", Text: "In the filthy store they sell magazines", Source: path + "#0"}, samples[0])
}

func TestReadTextAndHTML(t *testing.T) {
	root := t.TempDir()
	txt := writeFile(t, filepath.Join(root, "book", "novel.txt"), "The child reads a classical novel")
	page := writeFile(t, filepath.Join(root, "magazine", "page.html"), `<html><head><title>skip</title><style>p{}</style></head>
<body><p>He reads a <b>generonormative</b> magazine</p><script>var x = 1</script></body></html>`)

	samples, err := ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, []Sample{{Label: "book", Text: "The child reads a classical novel", Source: txt}}, samples)

	samples, err = ReadFile(page)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "magazine", samples[0].Label)
	assert.Equal(t, "He reads a generonormative magazine", samples[0].Text)
}

func TestLoadDirIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.tsv"), "magazine\tIn the filthy store they sell magazines\n")
	writeFile(t, filepath.Join(root, "a.tsv"), "book\tThe child reads a classical novel\nmagazine\tHe reads a generonormative magazine\n")
	writeFile(t, filepath.Join(root, "book", "c.txt"), "library")
	writeFile(t, filepath.Join(root, "notes.md"), "not a corpus file")
	writeFile(t, filepath.Join(root, ".git", "x.txt"), "hidden")

	for _, workers := range []int{0, 1, 4} {
		samples, err := LoadDir(context.Background(), root, workers)
		require.NoError(t, err)

		labels := make([]string, len(samples))
		for i, s := range samples {
			labels[i] = s.Label
		}
		assert.Equal(t, []string{"book", "magazine", "magazine", "book"}, labels)
	}
}

func TestLoadDirFailsOnBadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tsv"), "book\tnovel\n")
	writeFile(t, filepath.Join(root, "b.toml"), "[[sample]\nbroken")

	_, err := LoadDir(context.Background(), root, 2)
	assert.Error(t, err)
}

func TestLoadDirCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tsv"), "book\tnovel\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadDir(ctx, root, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMixedPaths(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, filepath.Join(root, "one.tsv"), "book\tnovel\n")
	dir := filepath.Join(root, "more")
	writeFile(t, filepath.Join(dir, "magazine", "x.txt"), "glossy")

	samples, err := Load(context.Background(), []string{file, dir}, 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "book", samples[0].Label)
	assert.Equal(t, "magazine", samples[1].Label)

	_, err = Load(context.Background(), []string{writeFile(t, filepath.Join(root, "x.csv"), "")}, 1)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(context.Background(), []string{filepath.Join(root, "missing")}, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTrain(t *testing.T) {
	c, err := bucket.New()
	require.NoError(t, err)

	applied := Train(c, []Sample{
		{Label: "book", Text: "The child reads a classical novel"},
		{Label: "magazine", Text: "He reads a generonormative magazine"},
		{Label: "magazine", Text: "In the filthy store they sell magazines"},
		{Label: "", Text: "ignored"},
		{Label: "book", Text: ""},
	})
	assert.Equal(t, 3, applied)
	assert.Equal(t, []string{"book"}, c.Guess("Miss so and so visits the classical library"))
	assert.Equal(t, []string{"magazine"}, c.Guess("In a store a girl reads a generonormative magazine"))
}
