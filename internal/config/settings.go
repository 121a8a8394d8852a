package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.Username, d.Password, d.Name)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
}

type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	CallbackSecret string `mapstructure:"callback_secret"`
}

func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(g.TimeoutSecs) * time.Second
}

type SnapshotConfig struct {
	WaitTimeoutSecs int    `mapstructure:"wait_timeout_secs"`
	StorageDir      string `mapstructure:"storage_dir"`
}

func (s SnapshotConfig) WaitTimeout() time.Duration {
	if s.WaitTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.WaitTimeoutSecs) * time.Second
}

type MaterialsConfig struct {
	StorageDir string `mapstructure:"storage_dir"`
	IndexPath  string `mapstructure:"index_path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type Settings struct {
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Materials MaterialsConfig `mapstructure:"materials"`
	Server    ServerConfig    `mapstructure:"server"`
	Env       string          `mapstructure:"env"`
	Debug     bool            `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	// Load settings from a configuration file or environment variables
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&settings)
	return &settings, nil
}

func applyDefaults(s *Settings) {
	if s.Server.Port == 0 {
		s.Server.Port = 8000
	}
	if s.Gateway.BaseURL == "" {
		s.Gateway.BaseURL = "http://127.0.0.1:8080"
	}
	if s.Snapshot.StorageDir == "" {
		s.Snapshot.StorageDir = ".data/snapshots"
	}
	if s.Materials.StorageDir == "" {
		s.Materials.StorageDir = "data/materials"
	}
	if s.Materials.IndexPath == "" {
		s.Materials.IndexPath = "data/materials/index.json"
	}
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
