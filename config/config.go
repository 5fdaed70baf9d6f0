package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	DB       DBConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
	Checkout CheckoutConfig
	Session  SessionConfig
	Menu     MenuConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type StorageConfig struct {
	Driver string // "memory" or "postgres"
}

type TelegramConfig struct {
	Token        string
	MessageToken string // token for sending new-order notifications to the kitchen chat
	AdminID      int64  // kitchen chat that receives MessageToken notifications
}

type HTTPConfig struct {
	Addr string
}

type CheckoutConfig struct {
	SettlementDelay time.Duration
	OrderIDPrefix   string
	DemoDefaults    bool // prefill checkout forms with a random sample customer
}

type SessionConfig struct {
	IdleTimeout time.Duration // 0 keeps sessions forever
}

type MenuConfig struct {
	MealUpcharge int64 // cents
}

type RabbitMQConfig struct {
	URL string // empty disables order.placed publishing
}

type LogConfig struct {
	Env string // "production" or "development"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	adminID, err := getInt64("ADMIN_ID", 0)
	if err != nil {
		return nil, err
	}
	upcharge, err := getInt64("MEAL_UPCHARGE_CENTS", 600)
	if err != nil {
		return nil, err
	}
	if upcharge < 0 {
		return nil, fmt.Errorf("MEAL_UPCHARGE_CENTS must be >= 0")
	}
	delay, err := getDuration("SETTLEMENT_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	idle, err := getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	if idle < 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be >= 0")
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory))
	if driver != StorageMemory && driver != StoragePostgres {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %s", driver)
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "burgerforge"),
		},
		Storage: StorageConfig{
			Driver: driver,
		},
		Telegram: TelegramConfig{
			Token:        getEnv("TOKEN", ""),
			MessageToken: getEnv("MESSAGE_TOKEN", ""),
			AdminID:      adminID,
		},
		HTTP: HTTPConfig{
			Addr: ":" + getEnv("PORT", "8080"),
		},
		Checkout: CheckoutConfig{
			SettlementDelay: delay,
			OrderIDPrefix:   getEnv("ORDER_ID_PREFIX", "BF"),
			DemoDefaults:    getBool("CHECKOUT_DEMO_DEFAULTS"),
		},
		Session: SessionConfig{
			IdleTimeout: idle,
		},
		Menu: MenuConfig{
			MealUpcharge: upcharge,
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Log: LogConfig{
			Env: getEnv("APP_ENV", "production"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

// getBool accepts "1" or "true" (any case).
func getBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}
