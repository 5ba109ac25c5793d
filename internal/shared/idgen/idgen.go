// Package idgen 生成资源标识符
//
// 标识符格式：32 个 [a-z0-9] 字符，按 8-4-4-4-12 分组，以 '-' 连接，总长 36。
// 只保证格式，不做唯一性检查（依赖 36^32 的随机空间）。
package idgen

import (
	"crypto/rand"
	"strings"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// Length 标识符总长度（含分隔符）
	Length = 36

	randomChars = 32
)

// 在第 8、12、16、20 个随机字符之后插入分隔符
var dashAfter = map[int]bool{8: true, 12: true, 16: true, 20: true}

// New 生成一个新的标识符
func New() string {
	var sb strings.Builder
	sb.Grow(Length)

	// 拒绝采样：丢弃 >= 252 的字节，使 36 个字符等概率
	const limit = 256 - 256%len(alphabet)
	buf := make([]byte, randomChars*2)
	n := 0
	for n < randomChars {
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			sb.WriteByte(alphabet[int(b)%len(alphabet)])
			n++
			if dashAfter[n] {
				sb.WriteByte('-')
			}
			if n == randomChars {
				break
			}
		}
	}
	return sb.String()
}

// Valid 检查 s 是否符合标识符格式
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' {
			if !dashAfter[n] {
				return false
			}
			continue
		}
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
		n++
		if dashAfter[n] && (i+1 >= len(s) || s[i+1] != '-') {
			return false
		}
	}
	return n == randomChars
}
