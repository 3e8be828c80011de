package utils

import (
	"fmt"
	"time"
)

// NewRecordID builds a directory record id from a three-letter type prefix
// and the last six digits of the current epoch-millisecond timestamp, e.g.
// "STU482910". Two calls within the same truncation window produce the
// same id; repositories reject the duplicate key and callers regenerate
// rather than overwrite (see service.withIDRetry).
func NewRecordID(prefix string) string {
	return NewRecordIDAt(prefix, time.Now())
}

// NewRecordIDAt is NewRecordID with an explicit clock, for tests.
func NewRecordIDAt(prefix string, now time.Time) string {
	ms := now.UnixMilli()
	return fmt.Sprintf("%s%06d", prefix, ms%1_000_000)
}
