package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultSQLiteDSN sqlite 模式未配置 DSN 时使用
const defaultSQLiteDSN = "file:data/reviews.db"

// defaults 硬编码默认值
func defaults() *YAMLConfig {
	return &YAMLConfig{
		Server: ServerConfig{
			Port:            "3000",
			APIPrefix:       "/api",
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			DataDir:   "data",
			MongoURL:  "mongodb://localhost:27017",
			MongoDB:   "restaurant_reviews",
			OpTimeout: 5 * time.Second,
		},
	}
}

// Load 加载配置
// 1. 加载 .env
// 2. 默认值 → common.yaml → {APP_ENV}.yaml
// 3. 环境变量覆盖
func Load() (*Config, error) {
	loadDotEnv()

	env := parseEnv(getEnv("APP_ENV", "dev"))
	y, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:     env,
		Server:  y.Server,
		Log:     y.Log,
		Storage: y.Storage,
		Redis:   y.Redis,
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Storage.Mode = detectStorageMode(cfg.Storage.Mode, cfg.Storage.SQLDSN)
	if cfg.Storage.Mode == ModeSQLite && cfg.Storage.SQLDSN == "" {
		cfg.Storage.SQLDSN = defaultSQLiteDSN
	}
	cfg.Server.APIPrefix = normalizePrefix(cfg.Server.APIPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) (*YAMLConfig, error) {
	cfg := defaults()
	for _, name := range []string{"common.yaml", fmt.Sprintf("%s.yaml", env)} {
		data, ok := readConfigFile(name)
		if !ok {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return cfg, nil
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv() error {
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Server.APIPrefix, "API_PREFIX")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Log.Format, "LOG_FORMAT")
	setFromEnv(&c.Log.File, "LOG_FILE")
	setFromEnv(&c.Storage.Mode, "DATA_MODE")
	setFromEnv(&c.Storage.DataDir, "DATA_DIR")
	setFromEnv(&c.Storage.MongoURL, "DB_URL")
	setFromEnv(&c.Storage.MongoDB, "DB_NAME")
	setFromEnv(&c.Storage.SQLDSN, "SQL_DSN")
	setFromEnv(&c.Redis.URL, "REDIS_URL")

	if v := os.Getenv("STORE_OP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STORE_OP_TIMEOUT %q: %w", v, err)
		}
		c.Storage.OpTimeout = d
	}
	if v := os.Getenv("LEGACY_ERROR_STATUS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LEGACY_ERROR_STATUS %q: %w", v, err)
		}
		c.Server.LegacyErrorStatus = b
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

// Validate 校验最终配置
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case ModeJSON:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required in %s mode", ModeJSON)
		}
	case ModeMongoDB:
		if c.Storage.MongoURL == "" || c.Storage.MongoDB == "" {
			return fmt.Errorf("storage.mongo_url and storage.mongo_db are required in %s mode", ModeMongoDB)
		}
	case ModeSQLite, ModePostgres:
		if c.Storage.SQLDSN == "" {
			return fmt.Errorf("storage.sql_dsn is required in %s mode", c.Storage.Mode)
		}
	default:
		return fmt.Errorf("unknown storage mode %q (want %s, %s, %s or %s)",
			c.Storage.Mode, ModeJSON, ModeMongoDB, ModeSQLite, ModePostgres)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.OpTimeout < 0 {
		return fmt.Errorf("storage.op_timeout must not be negative")
	}
	return nil
}

// Addr 监听地址
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setFromEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	var target string
	switch c.Storage.Mode {
	case ModeJSON:
		target = c.Storage.DataDir
	case ModeMongoDB:
		target = maskPassword(c.Storage.MongoURL) + "/" + c.Storage.MongoDB
	default:
		target = maskPassword(c.Storage.SQLDSN)
	}
	return fmt.Sprintf("Config{Env: %s, Port: %s, Prefix: %s, Storage: %s(%s), Redis: %s}",
		c.Env, c.Server.Port, c.Server.APIPrefix, c.Storage.Mode, target, maskPassword(c.Redis.URL))
}
