// Package filelist discovers HDL sources, testbenches and include headers in
// a project tree and writes the compile inputs for a simulation job.
package filelist

// Output artifact names written under the job directory.
const (
	FilelistName = "filelist.f"
	OptionsName  = "compile_options.txt"
	MetadataName = "project_metadata.json"
)

// IncdirPrefix prefixes every line of the compile options file.
const IncdirPrefix = "+incdir+"

// Request identifies one generation: the project to scan and the job
// directory that receives the outputs.
type Request struct {
	ProjectPath string
	JobPath     string
}

// Layout names the project subdirectories and the filename suffixes
// recognized in each of them.
type Layout struct {
	SrcDir      string
	TbDir       string
	IncludeDir  string
	SourceExts  []string
	IncludeExts []string

	// IgnoreFile is a gitignore-syntax file relative to the project root.
	// Empty disables ignore handling.
	IgnoreFile string
}

// DefaultLayout returns the src/, tb/, include/ layout with Verilog and
// SystemVerilog suffixes.
func DefaultLayout() Layout {
	return Layout{
		SrcDir:      "src",
		TbDir:       "tb",
		IncludeDir:  "include",
		SourceExts:  []string{".v", ".sv"},
		IncludeExts: []string{".vh", ".svh"},
		IgnoreFile:  ".filelistignore",
	}
}

// Metadata is the JSON summary written to project_metadata.json.
type Metadata struct {
	ProjectPath  string   `json:"project_path"`
	JobPath      string   `json:"job_path"`
	SrcFiles     []string `json:"src_files"`
	TbFiles      []string `json:"tb_files"`
	IncludeFiles []string `json:"include_files"`
	IncludeDirs  []string `json:"include_dirs"`
	TotalFiles   int      `json:"total_files"`

	// GeneratedAt is seconds since the epoch taken from the filelist's
	// creation time. Nil when the platform cannot report it.
	GeneratedAt *float64 `json:"generated_at"`
}

// Result is the outcome of a successful generation.
type Result struct {
	Metadata     Metadata
	FilelistPath string
	OptionsPath  string
	MetadataPath string
}
