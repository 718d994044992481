package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"salary-board/internal/common"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Port              int
	PlayersPath       string
	SeasonStatsPath   string
	SalaryModelPath   string
	NeighborModelPath string
	BundlePath        string
	FloorSalary       float64
	NeighborQuery     int
	NeighborLimit     int
	LeaderCount       int
	Language          string
	LogLevel          string
	LogFormat         string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

type ConfigFile struct {
	Server struct {
		Port         int    `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"server"`

	Data struct {
		Players       string `yaml:"players"`
		SeasonStats   string `yaml:"seasonStats"`
		SalaryModel   string `yaml:"salaryModel"`
		NeighborModel string `yaml:"neighborModel"`
		Bundle        string `yaml:"bundle"`
	} `yaml:"data"`

	Model struct {
		FloorSalary   float64 `yaml:"floorSalary"`
		NeighborQuery int     `yaml:"neighborQuery"`
		NeighborLimit int     `yaml:"neighborLimit"`
		LeaderCount   int     `yaml:"leaderCount"`
	} `yaml:"model"`

	UI struct {
		Language string `yaml:"language"`
	} `yaml:"ui"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	readTimeout, err := parseDurationOrDefault(config.Server.ReadTimeout, 15*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("server.readTimeout: %w", err)
	}
	writeTimeout, err := parseDurationOrDefault(config.Server.WriteTimeout, 15*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("server.writeTimeout: %w", err)
	}

	// Environment variables override the file
	settings := Settings{
		Port:              getIntFromEnvOrConfig(common.EnvPort, config.Server.Port, common.DefaultPort),
		PlayersPath:       getEnvOrDefault(common.EnvPlayersPath, orDefault(config.Data.Players, common.DefaultPlayersPath)),
		SeasonStatsPath:   getEnvOrDefault(common.EnvSeasonStatsPath, orDefault(config.Data.SeasonStats, common.DefaultSeasonStatsPath)),
		SalaryModelPath:   getEnvOrDefault(common.EnvSalaryModelPath, orDefault(config.Data.SalaryModel, common.DefaultSalaryModelPath)),
		NeighborModelPath: getEnvOrDefault(common.EnvNeighborModelPath, orDefault(config.Data.NeighborModel, common.DefaultNeighborModelPath)),
		BundlePath:        getEnvOrDefault(common.EnvBundlePath, config.Data.Bundle),
		FloorSalary:       getFloatFromEnvOrConfig(common.EnvFloorSalary, config.Model.FloorSalary, common.DefaultFloorSalary),
		NeighborQuery:     getIntFromEnvOrConfig(common.EnvNeighborQuery, config.Model.NeighborQuery, common.DefaultNeighborQuery),
		NeighborLimit:     getIntFromEnvOrConfig(common.EnvNeighborLimit, config.Model.NeighborLimit, common.DefaultNeighborLimit),
		LeaderCount:       getIntFromEnvOrConfig(common.EnvLeaderCount, config.Model.LeaderCount, common.DefaultLeaderCount),
		Language:          getEnvOrDefault(common.EnvLanguage, orDefault(config.UI.Language, common.DefaultLanguage)),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, orDefault(config.Log.Level, common.DefaultLogLevel)),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, orDefault(config.Log.Format, common.DefaultLogFormat)),
		ReadTimeout:       getDurationOrDefault(common.EnvReadTimeout, readTimeout),
		WriteTimeout:      getDurationOrDefault(common.EnvWriteTimeout, writeTimeout),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Port:              getIntOrDefault(common.EnvPort, common.DefaultPort),
		PlayersPath:       getEnvOrDefault(common.EnvPlayersPath, common.DefaultPlayersPath),
		SeasonStatsPath:   getEnvOrDefault(common.EnvSeasonStatsPath, common.DefaultSeasonStatsPath),
		SalaryModelPath:   getEnvOrDefault(common.EnvSalaryModelPath, common.DefaultSalaryModelPath),
		NeighborModelPath: getEnvOrDefault(common.EnvNeighborModelPath, common.DefaultNeighborModelPath),
		BundlePath:        os.Getenv(common.EnvBundlePath), // optional
		FloorSalary:       getFloatOrDefault(common.EnvFloorSalary, common.DefaultFloorSalary),
		NeighborQuery:     getIntOrDefault(common.EnvNeighborQuery, common.DefaultNeighborQuery),
		NeighborLimit:     getIntOrDefault(common.EnvNeighborLimit, common.DefaultNeighborLimit),
		LeaderCount:       getIntOrDefault(common.EnvLeaderCount, common.DefaultLeaderCount),
		Language:          getEnvOrDefault(common.EnvLanguage, common.DefaultLanguage),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
		ReadTimeout:       getDurationOrDefault(common.EnvReadTimeout, 15*time.Second),
		WriteTimeout:      getDurationOrDefault(common.EnvWriteTimeout, 15*time.Second),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// UsesBundle reports whether assets come from an artifact bundle instead of files.
func (s *Settings) UsesBundle() bool {
	return s.BundlePath != ""
}

// Tag returns the configured page language.
func (s *Settings) Tag() language.Tag {
	tag, err := language.Parse(s.Language)
	if err != nil {
		return language.Russian
	}
	return tag
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDurationOrDefault(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getIntOrDefault(key, defaultValue)
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getFloatOrDefault(key, defaultValue)
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.Port < 1024 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got %d", settings.Port)
	}

	// Either a bundle or every individual file is required
	if !settings.UsesBundle() {
		paths := map[string]string{
			common.EnvPlayersPath:       settings.PlayersPath,
			common.EnvSeasonStatsPath:   settings.SeasonStatsPath,
			common.EnvSalaryModelPath:   settings.SalaryModelPath,
			common.EnvNeighborModelPath: settings.NeighborModelPath,
		}
		for key, path := range paths {
			if path == "" {
				return fmt.Errorf("%s cannot be empty without %s", key, common.EnvBundlePath)
			}
		}
	}

	if settings.FloorSalary < 0 {
		return fmt.Errorf("floor salary cannot be negative, got %f", settings.FloorSalary)
	}
	if settings.NeighborLimit < 1 || settings.NeighborLimit > 50 {
		return fmt.Errorf("neighbor limit must be between 1 and 50, got %d", settings.NeighborLimit)
	}
	if settings.NeighborQuery <= settings.NeighborLimit {
		return fmt.Errorf("neighbor query (%d) must exceed neighbor limit (%d)", settings.NeighborQuery, settings.NeighborLimit)
	}
	if settings.LeaderCount < 1 || settings.LeaderCount > 100 {
		return fmt.Errorf("leader count must be between 1 and 100, got %d", settings.LeaderCount)
	}

	if _, err := language.Parse(settings.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", settings.Language, err)
	}
	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	if settings.LogFormat != common.LogFormatConsole && settings.LogFormat != common.LogFormatJSON {
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatConsole, common.LogFormatJSON, settings.LogFormat)
	}

	if settings.ReadTimeout < time.Second || settings.ReadTimeout > 5*time.Minute {
		return fmt.Errorf("read timeout must be between 1s and 5m, got %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout < time.Second || settings.WriteTimeout > 5*time.Minute {
		return fmt.Errorf("write timeout must be between 1s and 5m, got %v", settings.WriteTimeout)
	}

	return nil
}
