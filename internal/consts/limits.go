package consts

import "time"

// Input limits
const (
	// MaxInputLen is the size of the input buffer including the terminator slot,
	// so at most MaxInputLen-1 characters are accepted
	MaxInputLen = 512
)

// History defaults
const (
	// DefaultHistoryLimit is the number of history rows kept after pruning
	DefaultHistoryLimit = 1000
	// DefaultHistoryPageSize is the default number of rows returned by listings
	DefaultHistoryPageSize = 20
	// MaxHistoryPageSize caps the limit accepted from API callers
	MaxHistoryPageSize = 500
)

// Batch evaluation
const (
	// DefaultBatchWorkers is the default number of concurrent evaluations
	DefaultBatchWorkers = 8
)

// Buffer sizes for various operations
const (
	// BufferSize1KB is 1 kilobyte
	BufferSize1KB = 1024
	// BufferSize64KB is 64 kilobytes
	BufferSize64KB = 64 * 1024
)

// Timeouts for various operations
const (
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout10Seconds is a 10 second timeout
	Timeout10Seconds = 10 * time.Second
	// Timeout60Seconds is a 60 second timeout (1 minute)
	Timeout60Seconds = 60 * time.Second
)
