package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 ACCOUNTS_DATABASE_HOST
const EnvPrefix = "ACCOUNTS"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Snowflake  SnowflakeConfig  `mapstructure:"snowflake"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Accounts   AccountsConfig   `mapstructure:"accounts"`
	WorkerPool WorkerPoolConfig `mapstructure:"worker_pool"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig selects the relational backend. Driver is "postgres" or "sqlite";
// Path is only read for sqlite.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	RefreshHours int    `mapstructure:"refresh_hours"`
}

type RateLimitConfig struct {
	BotCreateLimit  int           `mapstructure:"bot_create_limit"`
	BotCreateWindow time.Duration `mapstructure:"bot_create_window"`
	// FailOpen lets requests through when redis is unreachable.
	FailOpen bool `mapstructure:"fail_open"`
}

type SnowflakeConfig struct {
	DatacenterID   int64 `mapstructure:"datacenter_id"`
	WorkerID       int64 `mapstructure:"worker_id"`
	DatacenterBits uint8 `mapstructure:"datacenter_bits"`
	WorkerIDBits   uint8 `mapstructure:"worker_id_bits"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	Topic      string   `mapstructure:"topic"`
	MaxRetries int      `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// AccountsConfig toggles the optional account-provisioning module.
type AccountsConfig struct {
	BotCreationEnabled bool `mapstructure:"bot_creation_enabled"`
}

// WorkerPoolConfig 协程池配置，用于异步发布账号事件
type WorkerPoolConfig struct {
	Size      int `mapstructure:"size"`
	QueueSize int `mapstructure:"queue_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "accounts")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "accounts.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.refresh_hours", 168)

	v.SetDefault("ratelimit.bot_create_limit", 5)
	v.SetDefault("ratelimit.bot_create_window", time.Hour)
	v.SetDefault("ratelimit.fail_open", true)

	v.SetDefault("snowflake.datacenter_id", 0)
	v.SetDefault("snowflake.worker_id", 1)
	v.SetDefault("snowflake.datacenter_bits", 0)
	v.SetDefault("snowflake.worker_id_bits", 10)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "account-events")
	v.SetDefault("kafka.max_retries", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")

	v.SetDefault("accounts.bot_creation_enabled", true)

	v.SetDefault("worker_pool.size", 4)
	v.SetDefault("worker_pool.queue_size", 256)
}

// LoadConfig 读取配置文件并叠加环境变量。path 为空时只使用默认值和环境变量。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must be set")
	}
	if c.WorkerPool.Size <= 0 || c.WorkerPool.QueueSize < 0 {
		return fmt.Errorf("worker_pool.size must be positive")
	}
	if c.RateLimit.BotCreateLimit < 0 {
		return fmt.Errorf("ratelimit.bot_create_limit must not be negative")
	}
	return nil
}
