package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// AttendanceConfig holds the knobs of the check-in decision engine.
// All calendar math runs in Timezone; tolerances widen the session
// window on both sides.
type AttendanceConfig struct {
	Timezone               string `yaml:"timezone"`
	EarlyToleranceMinutes  int    `yaml:"early_tolerance_minutes"`
	LateToleranceMinutes   int    `yaml:"late_tolerance_minutes"`
	DuplicateWindowMinutes int    `yaml:"duplicate_window_minutes"`
	QRTTLMinutes           int    `yaml:"qr_ttl_minutes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Attendance.applyDefaults()

	return &cfg, nil
}

func (c *AttendanceConfig) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Paris"
	}
	if c.EarlyToleranceMinutes == 0 {
		c.EarlyToleranceMinutes = 20
	}
	if c.LateToleranceMinutes == 0 {
		c.LateToleranceMinutes = 30
	}
	if c.DuplicateWindowMinutes == 0 {
		c.DuplicateWindowMinutes = 120
	}
	if c.QRTTLMinutes == 0 {
		c.QRTTLMinutes = 5
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
