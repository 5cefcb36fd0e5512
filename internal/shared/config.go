package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Port        string `env:"PORT" envDefault:"3000"`
	MetricsAddr string `env:"METRICS_ADDR"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	Mongo       MongoConfig
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/dealership?parseTime=true"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	RequestTimeout int     `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"15"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"50"`

	SeedDir     string `env:"SEED_DIR" envDefault:"./data"`
	SeedWorkers int    `env:"SEED_WORKERS" envDefault:"3"`
	SeedReset   bool   `env:"SEED_RESET" envDefault:"true"`
}

type MongoConfig struct {
	URI            string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database       string `env:"MONGO_DB" envDefault:"dealership"`
	ConnectTimeout int    `env:"MONGO_CONNECT_TIMEOUT_SECONDS" envDefault:"10"`
}

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Load reads the environment (and a .env file when present).
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	switch c.StoreDriver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of mongo, mysql, memory; got %q", c.StoreDriver)
	}
	if c.SeedWorkers <= 0 {
		c.SeedWorkers = 1
	}
	return c, nil
}

func (c Config) HTTPAddr() string { return ":" + c.Port }

func (c Config) CacheEnabled() bool { return c.RedisAddr != "" && c.CacheTTL > 0 }

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c Config) MongoConnectTimeout() time.Duration {
	return time.Duration(c.Mongo.ConnectTimeout) * time.Second
}
