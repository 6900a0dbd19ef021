package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	OpenAIAPIKey      string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel       string        `mapstructure:"OPENAI_MODEL"`
	CommissionRate    float64       `mapstructure:"PLATFORM_COMMISSION_RATE"`
	MinJobCost        int64         `mapstructure:"MINIMUM_JOB_COST"`
	MaxJobCost        int64         `mapstructure:"MAXIMUM_JOB_COST"`
	MaxDailyJobs      int           `mapstructure:"MAX_MASTER_DAILY_JOBS"`
	MasterRespTimeout time.Duration `mapstructure:"MASTER_RESPONSE_TIMEOUT"`
	ConversationTTL   time.Duration `mapstructure:"CONVERSATION_TTL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("PLATFORM_COMMISSION_RATE", 0.25)
	v.SetDefault("MINIMUM_JOB_COST", 500)
	v.SetDefault("MAXIMUM_JOB_COST", 50000)
	v.SetDefault("MAX_MASTER_DAILY_JOBS", 10)
	v.SetDefault("MASTER_RESPONSE_TIMEOUT", "15m")
	// 0 disables idle eviction; the conversation store then never expires.
	v.SetDefault("CONVERSATION_TTL", "0s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
