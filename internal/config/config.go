package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AckBeforeProcess = "before"
	AckAfterProcess  = "after"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Bus      BusConfig      `mapstructure:"bus"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Search   SearchConfig   `mapstructure:"search"`
	Email    EmailConfig    `mapstructure:"email"`
	Trending TrendingConfig `mapstructure:"trending"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
	Ops      OpsConfig      `mapstructure:"ops"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TopicConfig struct {
	Search   string `mapstructure:"search"`
	Relation string `mapstructure:"relation"`
	Email    string `mapstructure:"email"`
}

type BusConfig struct {
	Brokers     []string    `mapstructure:"brokers"`
	GroupPrefix string      `mapstructure:"group_prefix"`
	AckMode     string      `mapstructure:"ack_mode"` // before / after
	Topics      TopicConfig `mapstructure:"topics"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // mysql / postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

type CacheConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SearchConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type EmailConfig struct {
	SendLimit int           `mapstructure:"send_limit"`
	CodeTTL   time.Duration `mapstructure:"code_ttl"`
	TestMode  bool          `mapstructure:"test_mode"`
	SMTPCheck bool          `mapstructure:"smtp_check"`
	SMTP      SMTPConfig    `mapstructure:"smtp"`
}

type TrendingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	TTL      time.Duration `mapstructure:"ttl"`
	Size     int           `mapstructure:"size"`
}

type ShutdownConfig struct {
	Grace time.Duration `mapstructure:"grace"`
}

type OpsConfig struct {
	Addr   string `mapstructure:"addr"`
	Secret string `mapstructure:"secret"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.name", "burrow-worker")
	v.SetDefault("log.level", "info")

	v.SetDefault("bus.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("bus.group_prefix", "burrow")
	v.SetDefault("bus.ack_mode", AckBeforeProcess)
	v.SetDefault("bus.topics.search", "search")
	v.SetDefault("bus.topics.relation", "relation")
	v.SetDefault("bus.topics.email", "email")

	v.SetDefault("store.driver", "mysql")
	v.SetDefault("store.dsn", "user:password@tcp(127.0.0.1:3306)/burrow?charset=utf8mb4&parseTime=True")

	v.SetDefault("cache.addr", "127.0.0.1:6379")
	v.SetDefault("cache.db", 0)

	v.SetDefault("search.url", "http://127.0.0.1:8108")
	v.SetDefault("search.timeout", 5*time.Second)

	v.SetDefault("email.send_limit", 10)
	v.SetDefault("email.code_ttl", 4*time.Hour)
	v.SetDefault("email.test_mode", false)
	v.SetDefault("email.smtp_check", true)
	v.SetDefault("email.smtp.port", 587)

	v.SetDefault("trending.interval", 15*time.Minute)
	v.SetDefault("trending.ttl", time.Hour)
	v.SetDefault("trending.size", 50)

	v.SetDefault("shutdown.grace", 5*time.Second)
	v.SetDefault("ops.addr", ":8080")

	// AutomaticEnv 只对已知 key 生效，没有默认值的也要登记一下
	for _, k := range []string{
		"cache.password", "search.api_key",
		"email.smtp.host", "email.smtp.username", "email.smtp.password", "email.smtp.from",
		"ops.secret", "tracing.endpoint",
	} {
		v.SetDefault(k, "")
	}
}

// Load 读取可选的配置文件和 BURROW_ 前缀的环境变量，例如 BURROW_STORE_DSN
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BURROW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Bus.Brokers) == 0 {
		return errors.New("bus.brokers is empty")
	}
	switch c.Bus.AckMode {
	case AckBeforeProcess, AckAfterProcess:
	default:
		return fmt.Errorf("bus.ack_mode must be %q or %q, got %q", AckBeforeProcess, AckAfterProcess, c.Bus.AckMode)
	}
	if c.Store.DSN == "" {
		return errors.New("store.dsn is empty")
	}
	if c.Email.SendLimit <= 0 {
		return errors.New("email.send_limit must be positive")
	}
	if c.Email.CodeTTL <= 0 || c.Trending.TTL <= 0 || c.Trending.Interval <= 0 {
		return errors.New("ttl and interval values must be positive")
	}
	return nil
}
