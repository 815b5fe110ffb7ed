package security

import (
	"crypto/subtle"
	"os"
)

// CheckResolverSecret 校验定时任务触发口令（战斗结算/选举收盘走 cron，
// 不走用户 token）。常数时间比较，避免侧信道。
func CheckResolverSecret(candidate string) bool {
	secret := os.Getenv("RESOLVER_SECRET")
	if secret == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1
}
