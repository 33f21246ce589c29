package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSessionName is the sso-session section referenced by generated profiles.
	DefaultSessionName = "my-sso"

	// DefaultOutputFormat is the output format used for batch generation.
	DefaultOutputFormat = "json"
)

// Mapping rewrites a raw account name to a display name.
type Mapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Settings represents the configuration for ssoprofile.
// It can be loaded from YAML files or set via CLI flags.
type Settings struct {
	// Region is the IAM Identity Center region.
	Region string `yaml:"region"`

	// StartURL is the SSO portal start URL.
	StartURL string `yaml:"start_url"`

	// OutputFile is the AWS config file that receives the generated block.
	OutputFile string `yaml:"output_file"`

	// SessionName names the generated sso-session section.
	SessionName string `yaml:"session_name"`

	// NonInteractive accepts every default without prompting.
	NonInteractive bool `yaml:"non_interactive"`

	// DefaultProfile is mirrored into a [default] section when generated.
	DefaultProfile string `yaml:"default_profile"`

	// OpenBrowser opens the verification URL during login.
	OpenBrowser bool `yaml:"open_browser"`

	// Mappings rewrite account names before profile names are derived.
	Mappings []Mapping `yaml:"mappings"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		OutputFile:  defaultConfigPath(),
		SessionName: DefaultSessionName,
		OpenBrowser: true,
		Mappings:    []Mapping{},
	}
}

// LoadSettings loads settings from a YAML file.
// If the file doesn't exist, returns the default settings.
// The precedence order is: CLI flags > YAML config > defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := NewSettings()

	if path == "" {
		path = FindConfigFile()
	}

	if path == "" {
		return settings, nil
	}

	// #nosec G304 -- config file path is from user input or searched standard locations
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if settings.SessionName == "" {
		settings.SessionName = DefaultSessionName
	}
	if settings.OutputFile == "" {
		settings.OutputFile = defaultConfigPath()
	}

	return settings, nil
}

// FindConfigFile searches for an ssoprofile configuration file in standard locations.
// Returns an empty string if no config file is found.
func FindConfigFile() string {
	home := os.Getenv("HOME")
	searchPaths := []string{
		"./ssoprofile.yaml",
		"./ssoprofile.yml",
		filepath.Join(home, ".config", "ssoprofile", "config.yaml"),
		filepath.Join(home, ".config", "ssoprofile", "config.yml"),
		filepath.Join(home, ".ssoprofile", "config.yaml"),
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate trims and normalizes the settings and rejects empty required values.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.New("settings are nil")
	}

	s.Region = strings.TrimSpace(s.Region)
	s.StartURL = strings.TrimSpace(s.StartURL)
	s.SessionName = strings.TrimSpace(s.SessionName)
	s.DefaultProfile = strings.TrimSpace(s.DefaultProfile)

	if s.Region == "" {
		return &ValidationError{Field: "region", Reason: "cannot be empty"}
	}
	if s.StartURL == "" {
		return &ValidationError{Field: "start url", Reason: "cannot be empty"}
	}
	if s.SessionName == "" {
		s.SessionName = DefaultSessionName
	}
	if strings.ContainsAny(s.SessionName, " \t[]") {
		return &ValidationError{Field: "session name", Value: s.SessionName, Reason: "must not contain whitespace or brackets"}
	}

	path, err := NormalizePath(s.OutputFile)
	if err != nil {
		return err
	}
	s.OutputFile = path

	for _, m := range s.Mappings {
		if strings.TrimSpace(m.From) == "" || strings.TrimSpace(m.To) == "" {
			return &ValidationError{Field: "mapping", Value: m.From + ":" + m.To, Reason: "both sides must be non-empty"}
		}
	}

	return nil
}

func defaultConfigPath() string {
	if env := os.Getenv("AWS_CONFIG_FILE"); env != "" {
		return env
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}

	return filepath.Join(home, ".aws", "config")
}

func expandHomeDir(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.New("failed to resolve home directory")
	}

	if path == "~" {
		return home, nil
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// NormalizePath expands environment variables and a leading ~ and returns an absolute path.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &ValidationError{Field: "output file", Reason: "cannot be empty"}
	}

	expanded, err := expandHomeDir(os.ExpandEnv(strings.TrimSpace(path)))
	if err != nil {
		return "", err
	}

	expanded, err = filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	return expanded, nil
}
