package filelist

import (
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// loadIgnore compiles the project's ignore file. It returns nil when the
// file name is empty or the file does not exist.
func loadIgnore(projectPath, name string) (*ignore.GitIgnore, error) {
	if name == "" {
		return nil, nil
	}
	path := filepath.Join(projectPath, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ignore.CompileIgnoreFile(path)
}

// ignoreSkip adapts compiled ignore rules to a skipFunc. Paths are matched
// relative to the project root using forward slashes.
func ignoreSkip(gi *ignore.GitIgnore, projectPath string) skipFunc {
	if gi == nil {
		return nil
	}
	return func(path string, isDir bool) bool {
		rel, err := filepath.Rel(projectPath, path)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		if gi.MatchesPath(rel) {
			return true
		}
		return isDir && gi.MatchesPath(rel+"/")
	}
}
