package config

import (
	"regexp"
	"strings"
)

// detectStorageMode 检测存储模式
// 优先级：显式配置 > SQL_DSN 前缀 > 默认 json
func detectStorageMode(mode, sqlDSN string) string {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case "":
	case "mongo":
		return ModeMongoDB
	case "file", "json":
		return ModeJSON
	default:
		return m
	}
	if strings.HasPrefix(sqlDSN, "postgres://") || strings.HasPrefix(sqlDSN, "postgresql://") {
		return ModePostgres
	}
	if strings.HasPrefix(sqlDSN, "file:") || strings.HasSuffix(sqlDSN, ".db") {
		return ModeSQLite
	}
	return ModeJSON
}

var credentialRe = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)

// maskPassword 隐藏 URL 中的密码
func maskPassword(url string) string {
	return credentialRe.ReplaceAllString(url, "${1}***${3}")
}

// splitList 按逗号拆分并去除空白项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
