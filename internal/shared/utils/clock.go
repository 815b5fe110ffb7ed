package utils

import "time"

// NextUTCMidnight 返回 now 向上取整到下一个 UTC 零点。
func NextUTCMidnight(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// IsElectionDay 判断是否选举日（每月 5/15/25 号，按 UTC）。
func IsElectionDay(now time.Time) bool {
	switch now.UTC().Day() {
	case 5, 15, 25:
		return true
	}
	return false
}
