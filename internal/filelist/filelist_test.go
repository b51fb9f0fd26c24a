package filelist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates each file (and its parents) under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("// "+f+"\n"), 0o644))
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func readMetadata(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// newProject builds the canonical fixture and returns the project and job
// directories.
func newProject(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	project := filepath.Join(root, "proj")
	job := filepath.Join(root, "job")
	writeTree(t, project,
		"src/b.sv",
		"src/a.v",
		"src/pkg.svh",
		"tb/top_tb.sv",
		"include/defs.vh",
	)
	require.NoError(t, os.MkdirAll(job, 0o755))
	return project, job
}

func rel(parts ...string) string {
	return filepath.Join(append([]string{"..", "proj"}, parts...)...)
}

// ---------------------------------------------------------------------------
// ScanDirectory
// ---------------------------------------------------------------------------

func TestScanDirectory_MissingDirectory(t *testing.T) {
	files, err := ScanDirectory(filepath.Join(t.TempDir(), "nope"), []string{".v"}, "")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestScanDirectory_FileInsteadOfDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "top.v")

	files, err := ScanDirectory(filepath.Join(dir, "top.v"), []string{".v"}, "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanDirectory_FiltersBySuffixRecursively(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.v", "b.sv", "c.vh", "notes.txt", "deep/nested/d.v")

	files, err := ScanDirectory(dir, []string{".v", ".sv"}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.v"),
		filepath.Join(dir, "b.sv"),
		filepath.Join(dir, "deep", "nested", "d.v"),
	}, files)
}

func TestScanDirectory_SuffixIsNotExtensionMatch(t *testing.T) {
	dir := t.TempDir()
	// ".v" matches any name ending in ".v", and ".vh" does not end in ".v".
	writeTree(t, dir, "x.v", "x.vh", "xv")

	files, err := ScanDirectory(dir, []string{".v"}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.v"}, files)
}

func TestScanDirectory_RelativeTo(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "proj/src/core/alu.v")

	files, err := ScanDirectory(filepath.Join(root, "proj", "src"), []string{".v"}, filepath.Join(root, "job"))
	require.NoError(t, err)
	assert.Equal(t, []string{rel("src", "core", "alu.v")}, files)
}

func TestScanDirectory_SkipsDirectoriesNamedLikeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "weird.v"), 0o755))
	writeTree(t, dir, "weird.v/inner.v")

	files, err := ScanDirectory(dir, []string{".v"}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("weird.v", "inner.v")}, files)
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerate_Filelist(t *testing.T) {
	project, job := newProject(t)

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(job, FilelistName), res.FilelistPath)

	lines := readLines(t, res.FilelistPath)
	assert.Equal(t, []string{
		rel("src", "a.v"),
		rel("src", "b.sv"),
		rel("tb", "top_tb.sv"),
	}, lines)

	for _, l := range lines {
		assert.NotContains(t, l, "pkg.svh")
		assert.NotContains(t, l, "defs.vh")
	}
}

func TestGenerate_JobInsideProject(t *testing.T) {
	project, _ := newProject(t)

	res, err := Generate(Request{ProjectPath: project, JobPath: project})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.v", "src/b.sv", "tb/top_tb.sv"},
		toSlash(readLines(t, res.FilelistPath)))
	assert.Equal(t, []string{"+incdir+include", "+incdir+src"},
		toSlash(readLines(t, res.OptionsPath)))
}

func TestGenerate_CompileOptions(t *testing.T) {
	project, job := newProject(t)
	// Several headers in one directory must still yield one line.
	writeTree(t, project, "src/pkg2.svh", "src/sub/types.vh", "src/sub/more.svh", "include/extra.svh")

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"+incdir+" + rel("include"),
		"+incdir+" + rel("src"),
		"+incdir+" + rel("src", "sub"),
	}, readLines(t, res.OptionsPath))
}

func TestGenerate_SrcAlwaysIncludeDir(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "proj")
	job := filepath.Join(root, "job")
	writeTree(t, project, "src/top.v")
	require.NoError(t, os.MkdirAll(job, 0o755))

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)
	assert.Equal(t, []string{"+incdir+" + rel("src")}, readLines(t, res.OptionsPath))
}

func TestGenerate_Metadata(t *testing.T) {
	project, job := newProject(t)

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	m := readMetadata(t, res.MetadataPath)
	assert.Equal(t, project, m["project_path"])
	assert.Equal(t, job, m["job_path"])
	assert.Len(t, m["src_files"], 2)
	assert.Len(t, m["tb_files"], 1)
	assert.ElementsMatch(t, []any{rel("src", "pkg.svh"), rel("include", "defs.vh")}, m["include_files"])
	assert.ElementsMatch(t, []any{rel("src"), rel("include")}, m["include_dirs"])
	assert.Equal(t, float64(3), m["total_files"])

	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "windows":
		assert.IsType(t, float64(0), m["generated_at"])
	}

	assert.Equal(t, len(res.Metadata.SrcFiles)+len(res.Metadata.TbFiles), res.Metadata.TotalFiles)
}

func TestGenerate_MetadataKeyOrder(t *testing.T) {
	project, job := newProject(t)

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	data, err := os.ReadFile(res.MetadataPath)
	require.NoError(t, err)
	keys := []string{"project_path", "job_path", "src_files", "tb_files",
		"include_files", "include_dirs", "total_files", "generated_at"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(string(data), `"`+k+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestGenerate_MissingTestbench(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "proj")
	job := filepath.Join(root, "job")
	writeTree(t, project, "src/a.v", "src/b.sv")
	require.NoError(t, os.MkdirAll(job, 0o755))

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.Empty(t, res.Metadata.TbFiles)
	assert.Equal(t, []string{rel("src", "a.v"), rel("src", "b.sv")}, readLines(t, res.FilelistPath))

	m := readMetadata(t, res.MetadataPath)
	assert.Equal(t, []any{}, m["tb_files"])
	assert.Equal(t, []any{}, m["include_files"])
}

func TestGenerate_EmptyProject(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "proj")
	job := filepath.Join(root, "job")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.MkdirAll(job, 0o755))

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.Empty(t, readLines(t, res.FilelistPath))
	assert.Empty(t, readLines(t, res.OptionsPath))
	assert.Equal(t, 0, res.Metadata.TotalFiles)
}

func TestGenerate_Idempotent(t *testing.T) {
	project, job := newProject(t)

	first, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)
	filelist1, err := os.ReadFile(first.FilelistPath)
	require.NoError(t, err)
	options1, err := os.ReadFile(first.OptionsPath)
	require.NoError(t, err)

	second, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)
	filelist2, err := os.ReadFile(second.FilelistPath)
	require.NoError(t, err)
	options2, err := os.ReadFile(second.OptionsPath)
	require.NoError(t, err)

	assert.Equal(t, filelist1, filelist2)
	assert.Equal(t, options1, options2)

	// No temp files are left behind.
	entries, err := os.ReadDir(job)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGenerate_TestbenchHeadersIgnored(t *testing.T) {
	project, job := newProject(t)
	writeTree(t, project, "tb/tb_defs.svh")

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.NotContains(t, res.Metadata.IncludeFiles, rel("tb", "tb_defs.svh"))
	assert.NotContains(t, res.Metadata.IncludeDirs, rel("tb"))
}

func TestGenerate_IgnoreFile(t *testing.T) {
	project, job := newProject(t)
	writeTree(t, project, "src/gen/big.v", "src/gen/gen.svh", "src/old_top.v")
	require.NoError(t, os.WriteFile(filepath.Join(project, ".filelistignore"),
		[]byte("src/gen/\n*old_*.v\n"), 0o644))

	res, err := Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.Equal(t, []string{rel("src", "a.v"), rel("src", "b.sv")}, res.Metadata.SrcFiles)
	assert.NotContains(t, res.Metadata.IncludeDirs, rel("src", "gen"))
}

func TestGenerate_CustomLayout(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "proj")
	job := filepath.Join(root, "job")
	writeTree(t, project, "rtl/core.sv", "rtl/core.v", "verif/env.sv", "hdr/defs.svh")
	require.NoError(t, os.MkdirAll(job, 0o755))

	layout := Layout{
		SrcDir:      "rtl",
		TbDir:       "verif",
		IncludeDir:  "hdr",
		SourceExts:  []string{".sv"},
		IncludeExts: []string{".svh"},
	}
	res, err := NewGenerator(layout, nil).Generate(Request{ProjectPath: project, JobPath: job})
	require.NoError(t, err)

	assert.Equal(t, []string{rel("rtl", "core.sv"), rel("verif", "env.sv")}, readLines(t, res.FilelistPath))
	assert.Equal(t, []string{"+incdir+" + rel("hdr"), "+incdir+" + rel("rtl")}, readLines(t, res.OptionsPath))
}

func TestGenerate_MissingJobDirectoryFails(t *testing.T) {
	project, _ := newProject(t)

	_, err := Generate(Request{ProjectPath: project, JobPath: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

func TestFormatFilelist_SortsEachGroupSeparately(t *testing.T) {
	src := []string{"z.v", "a.v"}
	tb := []string{"b_tb.sv", "a_tb.sv"}

	got := string(FormatFilelist(src, tb))
	assert.Equal(t, "a.v\nz.v\na_tb.sv\nb_tb.sv\n", got)
	assert.Equal(t, []string{"z.v", "a.v"}, src, "input must not be reordered")
}

func TestFormatOptions(t *testing.T) {
	assert.Equal(t, "+incdir+a\n+incdir+b\n", string(FormatOptions([]string{"b", "a"})))
	assert.Empty(t, FormatOptions(nil))
}

func TestEncodeMetadata_NullTimestampAndEmptyLists(t *testing.T) {
	data, err := EncodeMetadata(&Metadata{ProjectPath: "p&q", JobPath: "j"})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"generated_at": null`)
	assert.Contains(t, s, `"src_files": []`)
	assert.Contains(t, s, `"p&q"`)
}

func TestIncludeDirs_Deduplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "proj/src/x.svh", "proj/src/y.svh")
	src := filepath.Join(root, "proj", "src")
	job := filepath.Join(root, "job")

	dirs, err := IncludeDirs(src, filepath.Join(root, "proj", "include"),
		[]string{rel("src", "x.svh"), rel("src", "y.svh")}, job)
	require.NoError(t, err)
	assert.Equal(t, []string{rel("src")}, dirs)
}

func TestIncludeDirs_RegularFilesAreNotDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "proj/src", "proj/include")

	dirs, err := IncludeDirs(filepath.Join(root, "proj", "src"), filepath.Join(root, "proj", "include"),
		nil, filepath.Join(root, "job"))
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestSummary(t *testing.T) {
	lines := Summary(&Metadata{
		SrcFiles:    []string{"a", "b"},
		TbFiles:     []string{"c"},
		IncludeDirs: []string{"inc", "src"},
	})
	assert.Equal(t, []string{
		"Generated filelist.f with 2 source files and 1 testbench files",
		"Include directories: inc, src",
	}, lines)
}

func TestFileCreationTime_Missing(t *testing.T) {
	assert.Nil(t, FileCreationTime(filepath.Join(t.TempDir(), "missing")))
}

func toSlash(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = filepath.ToSlash(s)
	}
	return out
}
