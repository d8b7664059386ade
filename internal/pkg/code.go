package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// RandAlphanumeric 生成 n 位字母数字验证码，去掉了 0/O、1/l/I 这类易混字符
func RandAlphanumeric(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[x.Int64()])
	}
	return b.String(), nil
}
