package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver          string
	DatabaseURL     string
	MaxConns        int
	MemorySeedPath  string
	ListingsTable   string
	StreetIndexView string
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string

	// пустой - обновление индекса по HTTP без авторизации
	AdminTokenSecret string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type AppConfig struct {
	AppName      string
	Storage      StorageConfig
	RabbitMQ     RabbitMQConfig
	Rest         RESTconfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig читает .env (если он есть) и переменные окружения.
// Отсутствующий .env не ошибка: в контейнере все приходит через окружение.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
	}

	cfg := &AppConfig{}
	cfg.AppName = getEnvAsString("APP_NAME", "dvf-search-service")

	cfg.Storage.Driver = strings.ToLower(getEnvAsString("STORAGE_DRIVER", StorageDriverPostgres))
	cfg.Storage.ListingsTable = getEnvAsString("LISTINGS_TABLE", "listings")
	cfg.Storage.StreetIndexView = getEnvAsString("STREET_INDEX_VIEW", "adresse_mutation_search")
	cfg.Storage.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 0)
	switch cfg.Storage.Driver {
	case StorageDriverPostgres:
		cfg.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.Storage.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for STORAGE_DRIVER=postgres")
		}
	case StorageDriverMemory:
		cfg.Storage.MemorySeedPath = os.Getenv("MEMORY_SEED_PATH")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q, expected %q or %q", cfg.Storage.Driver, StorageDriverPostgres, StorageDriverMemory)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS")
	cfg.Rest.AdminTokenSecret = os.Getenv("REFRESH_JWT_SECRET")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt: нечисловое значение логируется и заменяется значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists || valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList - список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
