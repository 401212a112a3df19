package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Common errors for server settings loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrEmptyFile    = errors.New("configuration file is empty")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
)

// Server holds the HTTP server settings admind serves with. Zero values are
// replaced by defaults in ApplyDefaults.
type Server struct {
	// Port the admin API listens on.
	Port int `yaml:"port"`

	// ReadTimeout and WriteTimeout in seconds.
	ReadTimeout  int `yaml:"readTimeout"`
	WriteTimeout int `yaml:"writeTimeout"`

	// LogLevel is debug, info, warn, or error. LogFormat is text or json.
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// CORSOrigins lists the portal origins allowed to call the API.
	CORSOrigins []string `yaml:"corsOrigins,omitempty"`
}

// Server defaults.
const (
	DefaultPort         = 8090
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
)

// DefaultServer returns the built-in server settings.
func DefaultServer() Server {
	s := Server{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero-valued fields in place.
func (s *Server) ApplyDefaults() {
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (s *Server) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (s *Server) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// LoadServerFile reads server settings from a YAML file and applies defaults
// to anything the file leaves unset. Returns wrapped errors for the common
// failure cases.
func LoadServerFile(path string) (*Server, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var s Server
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	s.ApplyDefaults()
	return &s, nil
}
