package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Storage struct {
		Backend    string `mapstructure:"backend"`
		Dir        string `mapstructure:"dir"`
		Prefix     string `mapstructure:"prefix"`
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"storage"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Export struct {
		Dir        string `mapstructure:"dir"`
		Assembler  string `mapstructure:"assembler"`
		Scale      int    `mapstructure:"scale"`
		Attempts   int    `mapstructure:"attempts"`
		ChromePath string `mapstructure:"chrome_path"`
	} `mapstructure:"export"`
}

var envBindings = map[string]string{
	"app.port":            "PORT",
	"app.env":             "ENV",
	"storage.backend":     "STORAGE_BACKEND",
	"storage.dir":         "STORAGE_DIR",
	"storage.prefix":      "STORAGE_PREFIX",
	"storage.sqlite_path": "SQLITE_PATH",
	"db.dsn":              "DATABASE_URL",
	"redis.addr":          "REDIS_ADDR",
	"redis.password":      "REDIS_PASSWORD",
	"redis.db":            "REDIS_DB",
	"export.dir":          "EXPORT_DIR",
	"export.assembler":    "EXPORT_ASSEMBLER",
	"export.scale":        "EXPORT_SCALE",
	"export.attempts":     "EXPORT_ATTEMPTS",
	"export.chrome_path":  "CHROME_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.env", "dev")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "resume-data/sections")
	v.SetDefault("storage.prefix", "resume")
	v.SetDefault("storage.sqlite_path", "resume-data/resume.db")
	v.SetDefault("redis.db", 0)
	v.SetDefault("export.dir", "resume-data/generated")
	v.SetDefault("export.assembler", "native")
	v.SetDefault("export.scale", 3)
	v.SetDefault("export.attempts", 3)
}

// LoadConfig reads .env (if present), an optional config.yaml in the working
// directory, then environment variables, in increasing precedence.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("note: .env file not found, using environment only")
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config.yaml: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.DB.DSN == "" {
		return errors.New("DATABASE_URL is required for the postgres storage backend")
	}
	if c.Storage.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required for the redis storage backend")
	}
	switch c.Export.Assembler {
	case "native", "chromedp":
	default:
		return fmt.Errorf("unknown export assembler %q", c.Export.Assembler)
	}
	if c.Export.Scale < 1 || c.Export.Scale > 4 {
		return fmt.Errorf("export scale must be between 1 and 4, got %d", c.Export.Scale)
	}
	if c.Export.Attempts < 1 {
		return fmt.Errorf("export attempts must be positive, got %d", c.Export.Attempts)
	}
	return nil
}
