// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（common.yaml，再叠加 {env}.yaml，如 dev.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	数据库密码只出现在 DB_URL / SQL_DSN 环境变量中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. --config 命令行参数（SetConfigDir）
//  2. CONFIG_DIR 环境变量
//  3. 当前目录或上级目录的 configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// 存储模式
const (
	ModeJSON     = "json"
	ModeMongoDB  = "mongodb"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port      string `yaml:"port"`
	APIPrefix string `yaml:"api_prefix"`
	// LegacyErrorStatus 所有失败统一返回 404（兼容旧客户端）
	LegacyErrorStatus bool          `yaml:"legacy_error_status"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // 为空时输出到 stdout
}

// StorageConfig 存储后端配置
type StorageConfig struct {
	Mode      string        `yaml:"mode"`     // json | mongodb | sqlite | postgres
	DataDir   string        `yaml:"data_dir"` // json 模式的数据目录
	MongoURL  string        `yaml:"mongo_url"`
	MongoDB   string        `yaml:"mongo_db"`
	SQLDSN    string        `yaml:"sql_dsn"`
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// RedisConfig 写入事件流配置，URL 为空时不启用
type RedisConfig struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env     Environment
	Server  ServerConfig
	Log     LogConfig
	Storage StorageConfig
	Redis   RedisConfig
}
