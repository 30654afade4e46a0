package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the terminal.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	API      APIConfig      `mapstructure:"api"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	App      AppConfig      `mapstructure:"app"`
}

type TelegramConfig struct {
	BotToken     string   `mapstructure:"bot_token"`
	AllowedChats []string `mapstructure:"allowed_chats"` // empty = allow every chat
}

// APIConfig describes the HTTP backend.
type APIConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	InitData        string `mapstructure:"init_data"` // session credential, attached as "Authorization: tma <v>"
	RequestTimeout  int    `mapstructure:"request_timeout"`
	MaxResponseSize int64  `mapstructure:"max_response_size"`
}

// GatewayConfig describes the real-time socket endpoint.
type GatewayConfig struct {
	URL string `mapstructure:"url"`
}

type AppConfig struct {
	DataDir       string  `mapstructure:"data_dir"`
	PollInterval  int     `mapstructure:"poll_interval"`  // token screen re-poll, seconds
	WatchInterval int     `mapstructure:"watch_interval"` // watchlist monitor, seconds
	WatchMovePct  float64 `mapstructure:"watch_move_pct"` // notify threshold, percent
}

// LoadConfig merges defaults, config.yaml, .env and flags (in that order).
func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // optional file, missing is fine

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.ReadInConfig()

	v.AutomaticEnv()

	setupEnvAliases(v)

	setupFlags(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// AllowedChats may arrive as a comma-separated string from .env.
	if raw := v.Get("telegram.allowed_chats"); raw != nil {
		switch val := raw.(type) {
		case string:
			if val != "" {
				config.Telegram.AllowedChats = strings.Split(val, ",")
				for i, c := range config.Telegram.AllowedChats {
					config.Telegram.AllowedChats[i] = strings.TrimSpace(c)
				}
			} else {
				config.Telegram.AllowedChats = []string{}
			}
		case []string:
			config.Telegram.AllowedChats = val
		case []interface{}:
			result := make([]string, 0, len(val))
			for _, item := range val {
				if str, ok := item.(string); ok {
					result = append(result, strings.TrimSpace(str))
				}
			}
			config.Telegram.AllowedChats = result
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setupEnvAliases(v *viper.Viper) {
	// TELEGRAM_BOT_TOKEN -> telegram.bot_token, and so on.
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.allowed_chats", "TELEGRAM_ALLOWED_CHATS")

	v.BindEnv("api.base_url", "API_BASE_URL")
	v.BindEnv("api.init_data", "API_INIT_DATA")
	v.BindEnv("api.request_timeout", "API_REQUEST_TIMEOUT")
	v.BindEnv("api.max_response_size", "API_MAX_RESPONSE_SIZE")

	v.BindEnv("gateway.url", "GATEWAY_URL")

	v.BindEnv("app.data_dir", "APP_DATA_DIR")
	v.BindEnv("app.poll_interval", "APP_POLL_INTERVAL")
	v.BindEnv("app.watch_interval", "APP_WATCH_INTERVAL")
	v.BindEnv("app.watch_move_pct", "APP_WATCH_MOVE_PCT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.allowed_chats", []string{})

	v.SetDefault("api.base_url", "https://upright-mighty-colt.ngrok-free.app")
	v.SetDefault("api.init_data", "")
	v.SetDefault("api.request_timeout", 30)
	v.SetDefault("api.max_response_size", 10*1024*1024) // 10MB

	v.SetDefault("gateway.url", "wss://sol.jetpump.org/ws")

	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.poll_interval", 15)
	v.SetDefault("app.watch_interval", 60)
	v.SetDefault("app.watch_move_pct", 10.0)
}

func setupFlags(v *viper.Viper) {
	pflag.String("telegram.bot_token", "", "Telegram bot token (env: TELEGRAM_BOT_TOKEN)")
	pflag.String("telegram.allowed_chats", "", "Comma-separated chat IDs allowed to use the bot (env: TELEGRAM_ALLOWED_CHATS)")

	pflag.String("api.base_url", "https://upright-mighty-colt.ngrok-free.app", "Backend base URL (env: API_BASE_URL)")
	pflag.String("api.init_data", "", "Session credential forwarded as the tma authorization header (env: API_INIT_DATA)")
	pflag.Int("api.request_timeout", 30, "HTTP request timeout in seconds (env: API_REQUEST_TIMEOUT)")
	pflag.Int64("api.max_response_size", 10*1024*1024, "Max response size in bytes (env: API_MAX_RESPONSE_SIZE)")

	pflag.String("gateway.url", "wss://sol.jetpump.org/ws", "Real-time gateway URL (env: GATEWAY_URL)")

	pflag.String("app.data_dir", "data", "Data directory (env: APP_DATA_DIR)")
	pflag.Int("app.poll_interval", 15, "Token screen re-poll interval in seconds (env: APP_POLL_INTERVAL)")
	pflag.Int("app.watch_interval", 60, "Watchlist monitor interval in seconds (env: APP_WATCH_INTERVAL)")
	pflag.Float64("app.watch_move_pct", 10.0, "Watchlist price move notify threshold in percent (env: APP_WATCH_MOVE_PCT)")

	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)
}

func validateConfig(cfg *Config) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	return nil
}
