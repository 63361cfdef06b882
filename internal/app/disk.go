package app

import "syscall"

// diskStats describes the filesystem holding the catalog cache.
type diskStats struct {
	TotalBytes     uint64  `json:"total_bytes"`
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
}

// diskUsage returns usage for the filesystem at path, or nil when it cannot
// be read (for example before the data root exists).
func diskUsage(path string) *diskStats {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return nil
	}
	ds := &diskStats{
		TotalBytes:     st.Blocks * uint64(st.Bsize),
		AvailableBytes: st.Bavail * uint64(st.Bsize),
	}
	ds.UsedBytes = ds.TotalBytes - st.Bfree*uint64(st.Bsize)
	if ds.TotalBytes > 0 {
		ds.UsedPercent = float64(ds.UsedBytes) / float64(ds.TotalBytes) * 100
	}
	return ds
}
