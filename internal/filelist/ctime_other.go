//go:build !linux && !darwin && !freebsd && !windows

package filelist

func creationTime(string) (float64, bool) {
	return 0, false
}
