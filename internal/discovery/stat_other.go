//go:build !linux

package discovery

import (
	"os"

	"phisweep/internal/store"
)

func statDiscovery(path string) (store.Discovery, error) {
	info, err := os.Stat(path)
	if err != nil {
		return store.Discovery{}, err
	}
	day := Days(info.ModTime())
	return store.Discovery{
		FileName:         path,
		FileSize:         info.Size(),
		KBAllocated:      (info.Size() + 1023) / 1024,
		CreationDays:     day,
		ModificationDays: day,
		ChangeDays:       day,
		AccessDays:       day,
		State:            "R",
	}, nil
}
