package security

import (
	"github.com/go-think/openssl"
)

// AesCBCEncrypt AES-CBC 加密告警推送帧。
func AesCBCEncrypt(data, key, iv []byte, padding string) ([]byte, error) {
	return openssl.AesCBCEncrypt(data, key, iv, padding)
}

// AesCBCDecrypt AES-CBC 解密。
func AesCBCDecrypt(data, key, iv []byte, padding string) ([]byte, error) {
	return openssl.AesCBCDecrypt(data, key, iv, padding)
}
