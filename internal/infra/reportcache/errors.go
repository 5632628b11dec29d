package reportcache

import "errors"

var (
	ErrCacheMiss         = errors.New("report not cached")
	ErrInvalidReportData = errors.New("invalid cached report data")
)
