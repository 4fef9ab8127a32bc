package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 进程级配置，启动时构造一次并显式传给各组件
type Config struct {
	Port    string
	GinMode string

	DB      DBConfig
	Storage StorageConfig

	MaxUploadBytes int64
	LogLevel       string
	LogFormat      string
}

type DBConfig struct {
	Driver         string
	URL            string
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string
	SQLitePath     string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

type StorageConfig struct {
	Driver   string
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string
	LocalDir string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "appdb")
	v.SetDefault("DB_USER", "appuser")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "snapfeed.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_QUERY_TIMEOUT", "10s")

	v.SetDefault("STORAGE_DRIVER", "s3")
	v.SetDefault("AWS_REGION", "us-east-2")
	v.SetDefault("S3_PREFIX", "uploads")
	v.SetDefault("LOCAL_STORAGE_DIR", "./data/objects")

	v.SetDefault("MAX_UPLOAD_BYTES", 16<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (if present) and the process environment.
// A missing .env file is not an error.
func Load() (*Config, bool) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()
	// CloudFormation 模板里注入的是小写变量名
	_ = v.BindEnv("DATABASE_ENDPOINT", "DATABASE_ENDPOINT", "database_endpoint")
	setDefaults(v)
	return FromViper(v), envLoaded
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	host := v.GetString("DATABASE_ENDPOINT")
	if host == "" {
		host = v.GetString("DB_HOST")
	}

	return &Config{
		Port:    v.GetString("PORT"),
		GinMode: v.GetString("GIN_MODE"),
		DB: DBConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			URL:            v.GetString("DATABASE_URL"),
			Host:           host,
			Port:           v.GetInt("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
			MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			QueryTimeout:   v.GetDuration("DB_QUERY_TIMEOUT"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Region:   v.GetString("AWS_REGION"),
			Bucket:   v.GetString("S3_BUCKET"),
			Prefix:   v.GetString("S3_PREFIX"),
			Endpoint: v.GetString("S3_ENDPOINT"),
			LocalDir: v.GetString("LOCAL_STORAGE_DIR"),
		},
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
	}
}

// DSN returns the postgres connection string. DATABASE_URL wins when set.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", host, c.Port),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
