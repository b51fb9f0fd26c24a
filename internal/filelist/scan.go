package filelist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// skipFunc reports whether a walked path should be left out. isDir is true
// for directories, which prunes the whole subtree.
type skipFunc func(path string, isDir bool) bool

// ScanDirectory recursively collects files under dir whose names end with
// any of exts. When relativeTo is non-empty each path is made relative to
// it, otherwise paths are returned as walked. A missing dir yields an empty
// result. Order follows traversal order.
func ScanDirectory(dir string, exts []string, relativeTo string) ([]string, error) {
	return scanDirectory(dir, exts, relativeTo, nil)
}

func scanDirectory(dir string, exts []string, relativeTo string, skip skipFunc) ([]string, error) {
	files := []string{}

	ok, err := isDir(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return files, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && skip != nil && skip(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasSuffix(d.Name(), exts) {
			return nil
		}
		// Symlinks to directories are not files.
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}
		if skip != nil && skip(path, false) {
			return nil
		}

		if relativeTo != "" {
			rel, err := relPath(path, relativeTo)
			if err != nil {
				return err
			}
			path = rel
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return files, nil
}

// hasSuffix reports whether name ends with any of exts.
func hasSuffix(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// relPath returns target relative to base, resolving both against the
// working directory first.
func relPath(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absBase, absTarget)
}

// isDir reports whether path exists and is a directory. Only a missing
// path is tolerated; any other stat failure is returned.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
