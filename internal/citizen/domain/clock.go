package domain

import (
	"time"

	"WorldRepublic/internal/shared/utils"
)

// NextUTCMidnight 返回 now 向上取整到下一个 UTC 零点。
// 所有每日动作（训练/工作/治疗/领奖）的冷却都落在这里。
func NextUTCMidnight(now time.Time) time.Time {
	return utils.NextUTCMidnight(now)
}

// IsElectionDay 判断是否选举日（每月 5/15/25 号，按 UTC）。
// 选举日禁止迁居与退党。
func IsElectionDay(now time.Time) bool {
	return utils.IsElectionDay(now)
}
