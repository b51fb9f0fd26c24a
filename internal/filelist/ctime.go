package filelist

// FileCreationTime returns the creation timestamp of path in seconds since
// the epoch, or nil when it cannot be determined. Unix platforms report the
// inode change time, which for a freshly written file is its creation time.
func FileCreationTime(path string) *float64 {
	ts, ok := creationTime(path)
	if !ok {
		return nil
	}
	return &ts
}
