package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// configDir 由外部通过 SetConfigDir 指定，优先级最高
var configDir string

// envSearchDirs .env 文件搜索目录
var envSearchDirs = []string{
	".",
	"..",
}

// SetConfigDir 设置配置文件目录（用于 --config 命令行参数）
func SetConfigDir(dir string) {
	configDir = dir
}

// configPaths 返回配置文件搜索路径
func configPaths() []string {
	if configDir != "" {
		return []string{configDir}
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return []string{dir}
	}
	return []string{"configs", "../configs", "../../configs"}
}

// loadDotEnv 加载第一个找到的 .env，已存在的环境变量不会被覆盖
func loadDotEnv() {
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
}

// readConfigFile 在搜索路径中查找 name，返回第一个可读文件的内容
func readConfigFile(name string) ([]byte, bool) {
	for _, base := range configPaths() {
		if data, err := os.ReadFile(filepath.Join(base, name)); err == nil {
			return data, true
		}
	}
	return nil, false
}
