package filelist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/filelistgen/internal/jobdir"
)

// Generator scans projects according to a Layout.
type Generator struct {
	layout Layout
	logger *slog.Logger
}

// NewGenerator returns a Generator for layout. A nil logger discards logs.
func NewGenerator(layout Layout, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{layout: layout, logger: logger}
}

// Generate runs the default layout against req.
func Generate(req Request) (*Result, error) {
	return NewGenerator(DefaultLayout(), nil).Generate(req)
}

// Generate scans the project and writes filelist.f, compile_options.txt and
// project_metadata.json under req.JobPath, which must already exist. All
// recorded paths are relative to the job directory.
func (g *Generator) Generate(req Request) (*Result, error) {
	srcDir := filepath.Join(req.ProjectPath, g.layout.SrcDir)
	tbDir := filepath.Join(req.ProjectPath, g.layout.TbDir)
	incDir := filepath.Join(req.ProjectPath, g.layout.IncludeDir)

	gi, err := loadIgnore(req.ProjectPath, g.layout.IgnoreFile)
	if err != nil {
		return nil, fmt.Errorf("loading ignore file: %w", err)
	}
	skip := ignoreSkip(gi, req.ProjectPath)

	srcFiles, err := scanDirectory(srcDir, g.layout.SourceExts, req.JobPath, skip)
	if err != nil {
		return nil, err
	}
	srcIncludes, err := scanDirectory(srcDir, g.layout.IncludeExts, req.JobPath, skip)
	if err != nil {
		return nil, err
	}
	tbFiles, err := scanDirectory(tbDir, g.layout.SourceExts, req.JobPath, skip)
	if err != nil {
		return nil, err
	}
	incFiles, err := scanDirectory(incDir, g.layout.IncludeExts, req.JobPath, skip)
	if err != nil {
		return nil, err
	}
	includeFiles := make([]string, 0, len(srcIncludes)+len(incFiles))
	includeFiles = append(includeFiles, srcIncludes...)
	includeFiles = append(includeFiles, incFiles...)

	g.logger.Debug("scan complete",
		"src", len(srcFiles), "tb", len(tbFiles), "include", len(includeFiles))

	res := &Result{
		FilelistPath: filepath.Join(req.JobPath, FilelistName),
		OptionsPath:  filepath.Join(req.JobPath, OptionsName),
		MetadataPath: filepath.Join(req.JobPath, MetadataName),
	}

	if err := jobdir.AtomicWrite(res.FilelistPath, FormatFilelist(srcFiles, tbFiles)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", FilelistName, err)
	}

	incDirs, err := IncludeDirs(srcDir, incDir, srcIncludes, req.JobPath)
	if err != nil {
		return nil, fmt.Errorf("collecting include directories: %w", err)
	}

	if err := jobdir.AtomicWrite(res.OptionsPath, FormatOptions(incDirs)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", OptionsName, err)
	}

	res.Metadata = Metadata{
		ProjectPath:  req.ProjectPath,
		JobPath:      req.JobPath,
		SrcFiles:     srcFiles,
		TbFiles:      tbFiles,
		IncludeFiles: includeFiles,
		IncludeDirs:  incDirs,
		TotalFiles:   len(srcFiles) + len(tbFiles),
		GeneratedAt:  FileCreationTime(res.FilelistPath),
	}

	data, err := EncodeMetadata(&res.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := jobdir.AtomicWrite(res.MetadataPath, data); err != nil {
		return nil, fmt.Errorf("writing %s: %w", MetadataName, err)
	}

	g.logger.Debug("outputs written",
		"filelist", res.FilelistPath, "include_dirs", len(incDirs))

	return res, nil
}

// IncludeDirs returns the sorted, de-duplicated include directories
// relative to jobPath: srcDir itself when it is a directory, every directory
// holding one of srcIncludes (already relative to jobPath), and includeDir
// when it is a directory. A regular file named like srcDir or includeDir
// contributes nothing.
func IncludeDirs(srcDir, includeDir string, srcIncludes []string, jobPath string) ([]string, error) {
	set := make(map[string]struct{})

	ok, err := isDir(srcDir)
	if err != nil {
		return nil, err
	}
	if ok {
		rel, err := relPath(srcDir, jobPath)
		if err != nil {
			return nil, err
		}
		set[rel] = struct{}{}
		for _, f := range srcIncludes {
			set[filepath.Dir(f)] = struct{}{}
		}
	}

	ok, err = isDir(includeDir)
	if err != nil {
		return nil, err
	}
	if ok {
		rel, err := relPath(includeDir, jobPath)
		if err != nil {
			return nil, err
		}
		set[rel] = struct{}{}
	}

	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// FormatFilelist renders sorted sources followed by sorted testbenches, one
// path per line. The inputs are not modified.
func FormatFilelist(srcFiles, tbFiles []string) []byte {
	var buf bytes.Buffer
	for _, group := range [][]string{srcFiles, tbFiles} {
		for _, f := range sortedCopy(group) {
			buf.WriteString(f)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// FormatOptions renders one +incdir+ line per directory in sorted order.
func FormatOptions(dirs []string) []byte {
	var buf bytes.Buffer
	for _, d := range sortedCopy(dirs) {
		buf.WriteString(IncdirPrefix)
		buf.WriteString(d)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// EncodeMetadata renders m as two-space indented JSON. Nil lists are
// written as empty arrays.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	out := *m
	out.SrcFiles = nonNil(out.SrcFiles)
	out.TbFiles = nonNil(out.TbFiles)
	out.IncludeFiles = nonNil(out.IncludeFiles)
	out.IncludeDirs = nonNil(out.IncludeDirs)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Summary returns the two human-readable summary lines for a result.
func Summary(m *Metadata) []string {
	return []string{
		fmt.Sprintf("Generated %s with %d source files and %d testbench files",
			FilelistName, len(m.SrcFiles), len(m.TbFiles)),
		fmt.Sprintf("Include directories: %s", strings.Join(m.IncludeDirs, ", ")),
	}
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
