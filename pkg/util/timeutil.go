package util

import "time"

// Timestamp layouts shared by the reading log and snapshot filenames. The log
// layout matches the rows written by earlier deployments, so it must not
// change without a migration.
const (
	LogTimeLayout   = "2006-01-02 15:04:05"
	FileStampLayout = "20060102_150405"
)

// FormatLogTime renders t the way the reading log stores timestamps.
func FormatLogTime(t time.Time) string {
	return t.Format(LogTimeLayout)
}

// ParseLogTime parses a reading-log timestamp in local time.
func ParseLogTime(value string) (time.Time, error) {
	return time.ParseInLocation(LogTimeLayout, value, time.Local)
}

// FileStamp renders t as the compact stamp embedded in snapshot filenames.
func FileStamp(t time.Time) string {
	return t.Format(FileStampLayout)
}
