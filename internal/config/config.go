package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

type Config struct {
	App struct {
		Port     string `mapstructure:"port"`
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
		BaseURL  string `mapstructure:"base_url"`
	} `mapstructure:"app"`
	Store struct {
		Driver    string `mapstructure:"driver"`
		KeyPrefix string `mapstructure:"key_prefix"`
	} `mapstructure:"store"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	SQLite struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret         string        `mapstructure:"jwt_secret"`
		TokenLifespan     time.Duration `mapstructure:"token_lifespan"`
		OwnerEmail        string        `mapstructure:"owner_email"`
		OwnerPasswordHash string        `mapstructure:"owner_password_hash"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	LLM struct {
		Provider    string        `mapstructure:"provider"`
		BaseURL     string        `mapstructure:"base_url"`
		APIKey      string        `mapstructure:"api_key"`
		VisionModel string        `mapstructure:"vision_model"`
		ChatModel   string        `mapstructure:"chat_model"`
		MaxTokens   int           `mapstructure:"max_tokens"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
	Compliance struct {
		TotalHours      float64 `mapstructure:"total_hours"`
		VerifiableHours float64 `mapstructure:"verifiable_hours"`
		EthicsHours     float64 `mapstructure:"ethics_hours"`
	} `mapstructure:"compliance"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.key_prefix", "")
	v.SetDefault("sqlite.path", "cpd-tracker.db")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("llm.provider", LLMProviderOpenAI)
	v.SetDefault("llm.vision_model", "gpt-4o-mini")
	v.SetDefault("llm.chat_model", "gpt-4o-mini")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("compliance.total_hours", 20)
	v.SetDefault("compliance.verifiable_hours", 10)
	v.SetDefault("compliance.ethics_hours", 2)
}

// LoadConfig reads .env, then config.yaml from the given search paths (the
// working directory when none are given), then environment overrides.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("app.base_url", "APP_BASE_URL")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.key_prefix", "STORE_KEY_PREFIX")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("sqlite.path", "SQLITE_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.owner_email", "OWNER_EMAIL")
	v.BindEnv("auth.owner_password_hash", "OWNER_PASSWORD_HASH")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.api_key", "LLM_API_KEY")
	v.BindEnv("llm.vision_model", "LLM_VISION_MODEL")
	v.BindEnv("llm.chat_model", "LLM_CHAT_MODEL")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")

	v.BindEnv("compliance.total_hours", "COMPLIANCE_TOTAL_HOURS")
	v.BindEnv("compliance.verifiable_hours", "COMPLIANCE_VERIFIABLE_HOURS")
	v.BindEnv("compliance.ethics_hours", "COMPLIANCE_ETHICS_HOURS")

	v.BindEnv("tracing.otlp_endpoint", "TRACING_OTLP_ENDPOINT")

	err = v.Unmarshal(&cfg)
	if err != nil {
		return
	}

	// KAFKA_BROKERS arrives as one comma separated string from the environment.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	return
}
