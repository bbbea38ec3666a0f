package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvToken          = "GITHUB_TOKEN"
	EnvSourceOrg      = "SRC_ORG"
	EnvDestinationOrg = "DST_ORG"

	DefaultProvider     = "github"
	DefaultRateBuffer   = 100
	DefaultExtraWait    = 60 * time.Second
	DefaultPollInterval = 60 * time.Second
	DefaultPerPage      = 100
)

// Settings is the runtime configuration of a mirror run. The credential and both
// organization names come from the environment; everything else is optional tuning
// read from a YAML file.
type Settings struct {
	Token          string `yaml:"-" validate:"required"`
	SourceOrg      string `yaml:"-" validate:"required"`
	DestinationOrg string `yaml:"-" validate:"required,nefield=SourceOrg"`

	Provider     string        `yaml:"provider"      validate:"required"`
	BaseURL      string        `yaml:"base_url"      validate:"omitempty,url"`
	RateBuffer   int           `yaml:"rate_buffer"   validate:"gte=0"`
	ExtraWait    time.Duration `yaml:"extra_wait"    validate:"gte=0"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	MaxPasses    int           `yaml:"max_passes"    validate:"gte=0"`
	PerPage      int           `yaml:"per_page"      validate:"gte=1,lte=100"`
	MetricsFile  string        `yaml:"metrics_file"`
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

//nolint:gochecknoglobals // compiled once
var (
	envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)
	settingsEnv   = map[string]string{
		"Token":          EnvToken,
		"SourceOrg":      EnvSourceOrg,
		"DestinationOrg": EnvDestinationOrg,
	}
)

// DefaultSettings returns the tuning defaults with no credentials.
func DefaultSettings() Settings {
	//nolint:exhaustruct // credentials come from the environment
	return Settings{
		Provider:     DefaultProvider,
		RateBuffer:   DefaultRateBuffer,
		ExtraWait:    DefaultExtraWait,
		PollInterval: DefaultPollInterval,
		PerPage:      DefaultPerPage,
	}
}

// NewSettings builds validated settings from an optional YAML file (empty path
// skips it) and the environment.
func NewSettings(configPath string, lookup LookupEnv) (*Settings, error) {
	settings := DefaultSettings()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
		if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
		logger.Debugf("Loaded tuning from %s", configPath)
	}

	token, _ := lookup(EnvToken)
	settings.Token = resolveToken(token, lookup)
	settings.SourceOrg, _ = lookup(EnvSourceOrg)
	settings.DestinationOrg, _ = lookup(EnvDestinationOrg)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks required values and tuning ranges.
func (s *Settings) Validate() error {
	err := validator.New().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	first := fieldErrs[0]
	if envName, ok := settingsEnv[first.Field()]; ok && first.Tag() == "required" {
		return fmt.Errorf("%w: No %s supplied in env", ErrMissingConfiguration, envName)
	}
	return fmt.Errorf("%w: %s failed %q (got %v)", ErrInvalidConfiguration, first.Field(), first.Tag(), first.Value())
}

// FindConfigFile searches the standard locations for a tuning file.
func FindConfigFile() (string, error) {
	locations := []string{".", ".config"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".orgmirror.yaml",
		".orgmirror.yml",
		"orgmirror.yaml",
		"orgmirror.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands ${VAR} references and, if the result names an existing
// file, reads the token from it.
func resolveToken(raw string, lookup LookupEnv) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := lookup(varName); ok && val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}
