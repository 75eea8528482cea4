package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds installer settings shared by all pipeline components.
// Components receive it at construction instead of reading ambient state,
// so tests can inject fixtures without touching the environment.
type Config struct {
	// Owner is the release repository owner on the release store.
	Owner string `yaml:"owner"`
	// Repo is the release repository name.
	Repo string `yaml:"repo"`
	// ToolName is the published artifact name prefix.
	ToolName string `yaml:"tool_name"`
	// BinaryName is the name the binary is installed under.
	BinaryName string `yaml:"binary_name"`
	// InstallDir is the directory receiving the installed binary.
	InstallDir string `yaml:"install_dir"`
	// UnitPath is the systemd unit file location.
	UnitPath string `yaml:"unit_path"`
	// StateDir is the service working directory.
	StateDir string `yaml:"state_dir"`
	// ConfigDir is the service configuration directory.
	ConfigDir string `yaml:"config_dir"`
	// APIBaseURL is the release store metadata endpoint base.
	APIBaseURL string `yaml:"api_base_url"`
	// DownloadBaseURL is the release store artifact endpoint base.
	DownloadBaseURL string `yaml:"download_base_url"`
	// AuthToken raises the release store rate limit when set.
	// It is read from the environment, never persisted to YAML.
	AuthToken string `yaml:"-"`
}

const (
	// DefaultOwner is the release repository owner.
	DefaultOwner = "lurixo"

	// DefaultRepo is the release repository name.
	DefaultRepo = "reF1nd-releases"

	// DefaultToolName is the artifact name prefix used by the publisher.
	DefaultToolName = "sing-box"

	// DefaultInstallDir is where the binary lands.
	DefaultInstallDir = "/usr/local/bin"

	// DefaultUnitPath is the canonical systemd unit location.
	DefaultUnitPath = "/etc/systemd/system/sing-box.service"

	// DefaultStateDir is the service working directory.
	DefaultStateDir = "/var/lib/sing-box"

	// DefaultConfigDir is the service configuration directory.
	DefaultConfigDir = "/etc/sing-box"

	// DefaultAPIBaseURL is the release store metadata API.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultDownloadBaseURL is the release store artifact host.
	DefaultDownloadBaseURL = "https://github.com"

	// TokenEnvVar names the environment variable carrying the auth token.
	TokenEnvVar = "GITHUB_TOKEN"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRepositoryRequired is returned when owner or repo is missing.
	errRepositoryRequired = errors.New("release repository owner and name must be provided")
	// errToolNameRequired is returned when the tool name is missing.
	errToolNameRequired = errors.New("tool name must be provided")
	// errInstallDirRequired is returned when the install directory is missing.
	errInstallDirRequired = errors.New("install directory must be provided")
)

// Default returns a configuration targeting the reF1nd sing-box builds,
// with the auth token picked up from the environment when present.
func Default() *Config {
	return &Config{
		Owner:           DefaultOwner,
		Repo:            DefaultRepo,
		ToolName:        DefaultToolName,
		BinaryName:      DefaultToolName,
		InstallDir:      DefaultInstallDir,
		UnitPath:        DefaultUnitPath,
		StateDir:        DefaultStateDir,
		ConfigDir:       DefaultConfigDir,
		APIBaseURL:      DefaultAPIBaseURL,
		DownloadBaseURL: DefaultDownloadBaseURL,
		AuthToken:       os.Getenv(TokenEnvVar),
	}
}

// Load reads configuration from the provided path on top of the defaults
// and validates essential fields.
func Load(path string) (*Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaulted fields that were blanked out.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		return errRepositoryRequired
	}

	if cfg.ToolName == "" {
		return errToolNameRequired
	}

	if cfg.BinaryName == "" {
		cfg.BinaryName = cfg.ToolName
	}

	if cfg.InstallDir == "" {
		return errInstallDirRequired
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if cfg.DownloadBaseURL == "" {
		cfg.DownloadBaseURL = DefaultDownloadBaseURL
	}

	for _, base := range []string{cfg.APIBaseURL, cfg.DownloadBaseURL} {
		if _, err := url.ParseRequestURI(base); err != nil {
			return fmt.Errorf("invalid release store URL %q: %w", base, err)
		}
	}

	return nil
}

// BinaryPath returns the full path of the installed binary.
func (c *Config) BinaryPath() string {
	return filepath.Join(c.InstallDir, c.BinaryName)
}
