//go:build windows

package filelist

import (
	"os"
	"syscall"
)

func creationTime(path string) (float64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	attr, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return 0, false
	}
	return float64(attr.CreationTime.Nanoseconds()) / 1e9, true
}
