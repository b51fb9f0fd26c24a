//go:build linux || darwin || freebsd

package filelist

import "golang.org/x/sys/unix"

func creationTime(path string) (float64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	sec, nsec := st.Ctim.Unix()
	return float64(sec) + float64(nsec)/1e9, true
}
