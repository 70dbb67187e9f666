//go:build linux

package discovery

import (
	"time"

	"golang.org/x/sys/unix"

	"phisweep/internal/store"
)

func statDiscovery(path string) (store.Discovery, error) {
	var st unix.Statx_t
	mask := unix.STATX_BASIC_STATS | unix.STATX_BTIME
	if err := unix.Statx(unix.AT_FDCWD, path, 0, mask, &st); err != nil {
		return store.Discovery{}, err
	}
	mtime := statxTime(st.Mtime)
	crtime := statxTime(st.Ctime)
	if st.Mask&unix.STATX_BTIME != 0 {
		crtime = statxTime(st.Btime)
	}
	return store.Discovery{
		FileName:         path,
		FileSize:         int64(st.Size),
		KBAllocated:      int64(st.Blocks) / 2,
		UserID:           int(st.Uid),
		GroupID:          int(st.Gid),
		CreationDays:     Days(crtime),
		ModificationDays: Days(mtime),
		ChangeDays:       Days(statxTime(st.Ctime)),
		AccessDays:       Days(statxTime(st.Atime)),
		State:            "R",
	}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
