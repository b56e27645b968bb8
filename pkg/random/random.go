package random

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Code 產生 n bytes 的隨機十六進位字串（大寫），用於票號等抗碰撞代碼
func Code(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
