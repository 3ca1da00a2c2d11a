package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

// Settings defines editable application settings.
type Settings struct {
	RemoteBaseURL string
	APIToken      string
	TickInterval  time.Duration
}

// DefaultSettings returns default settings for TimePunch.
func DefaultSettings() Settings {
	return Settings{
		RemoteBaseURL: "http://localhost:8700",
		TickInterval:  time.Second,
	}
}

type yamlSettings struct {
	RemoteBaseURL string `yaml:"remote_base_url"`
	APIToken      string `yaml:"api_token"`
	TickSeconds   int    `yaml:"tick_seconds"`
}

// LoadSettings reads application settings from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (Settings, error) {
	settings := DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes application settings to YAML.
func SaveSettings(appName string, settings Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		RemoteBaseURL: settings.RemoteBaseURL,
		APIToken:      settings.APIToken,
		TickSeconds:   int(settings.TickInterval / time.Second),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.RemoteBaseURL != "" {
		settings.RemoteBaseURL = fileData.RemoteBaseURL
	}
	if fileData.APIToken != "" {
		settings.APIToken = fileData.APIToken
	}
	if fileData.TickSeconds > 0 {
		settings.TickInterval = time.Duration(fileData.TickSeconds) * time.Second
	}
}
