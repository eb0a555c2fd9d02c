// Package config loads mediasort settings from an optional YAML file and
// MEDIASORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/layout"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

const (
	Name      = "mediasort"
	EnvPrefix = "MEDIASORT"
	// LogToStderr as log.file sends log output to stderr instead of a file.
	LogToStderr = "-"
)

type Config struct {
	Organizer OrganizerConfig `mapstructure:"organizer"`
	Selector  SelectorConfig  `mapstructure:"selector"`
	Log       LogConfig       `mapstructure:"log"`

	// Workdir is the folder every relative path was resolved against.
	Workdir string `mapstructure:"-"`
	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-"`
}

type OrganizerConfig struct {
	Destination     string `mapstructure:"destination"`
	FilenamePattern string `mapstructure:"filename_pattern"`
	ShellProperty   string `mapstructure:"shell_property"`
	ExiftoolPath    string `mapstructure:"exiftool_path"`
	DryRun          bool   `mapstructure:"dry_run"`
}

type SelectorConfig struct {
	SourceDir string `mapstructure:"source_dir"`
	DestDir   string `mapstructure:"dest_dir"`
	Extension string `mapstructure:"extension"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Pattern returns the validated filename pattern mode.
func (c Config) Pattern() dates.PatternMode {
	mode, err := dates.ParsePatternMode(c.Organizer.FilenamePattern)
	if err != nil {
		return dates.PatternLoose
	}
	return mode
}

// StateDir is where reports and the default log file live.
func (c Config) StateDir() string {
	return filepath.Join(c.Workdir, layout.StateDir)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("organizer.destination", "")
	v.SetDefault("organizer.filename_pattern", string(dates.PatternLoose))
	v.SetDefault("organizer.shell_property", "auto")
	v.SetDefault("organizer.exiftool_path", "")
	v.SetDefault("organizer.dry_run", false)

	v.SetDefault("selector.source_dir", "gameboyroms")
	v.SetDefault("selector.dest_dir", "gbcselection")
	v.SetDefault("selector.extension", ".gbc")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Default returns the built-in settings for workdir, ignoring config files
// and the environment.
func Default(workdir string) Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.Workdir = workdir
	_ = cfg.validate()
	cfg.resolvePaths()
	return cfg
}

// Load reads mediasort.yaml from workdir or workdir/.mediasort, or the file at
// explicitPath when given. A missing search-path file is not an error; a
// missing explicit file is.
func Load(workdir string, explicitPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(resolve(workdir, explicitPath))
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(workdir)
		v.AddConfigPath(filepath.Join(workdir, layout.StateDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Workdir = workdir
	cfg.File = v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.resolvePaths()
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := dates.ParsePatternMode(c.Organizer.FilenamePattern); err != nil {
		return fmt.Errorf("organizer.filename_pattern: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Organizer.ShellProperty)) {
	case "auto", "off":
		c.Organizer.ShellProperty = strings.ToLower(strings.TrimSpace(c.Organizer.ShellProperty))
	default:
		return fmt.Errorf("organizer.shell_property: unknown value %q (want auto or off)", c.Organizer.ShellProperty)
	}

	c.Selector.Extension = mediaext.Normalize(c.Selector.Extension)
	if c.Selector.Extension == "" {
		return errors.New("selector.extension: must not be empty")
	}
	if strings.TrimSpace(c.Selector.SourceDir) == "" {
		return errors.New("selector.source_dir: must not be empty")
	}
	if strings.TrimSpace(c.Selector.DestDir) == "" {
		return errors.New("selector.dest_dir: must not be empty")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (c *Config) resolvePaths() {
	if c.Organizer.Destination == "" {
		c.Organizer.Destination = c.Workdir
	} else {
		c.Organizer.Destination = resolve(c.Workdir, c.Organizer.Destination)
	}
	c.Selector.SourceDir = resolve(c.Workdir, c.Selector.SourceDir)
	c.Selector.DestDir = resolve(c.Workdir, c.Selector.DestDir)

	switch c.Log.File {
	case LogToStderr:
	case "":
		c.Log.File = filepath.Join(c.StateDir(), Name+".log")
	default:
		c.Log.File = resolve(c.Workdir, c.Log.File)
	}
	// A bare command name is looked up on PATH later.
	if strings.ContainsAny(c.Organizer.ExiftoolPath, `/\`) {
		c.Organizer.ExiftoolPath = resolve(c.Workdir, c.Organizer.ExiftoolPath)
	}
}

func resolve(workdir string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workdir, path)
}
