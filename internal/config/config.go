// Package config resolves the scaffolder's settings.
//
// Values are layered, later layers winning:
//  1. compiled-in defaults (Default)
//  2. a config file: YAML (.yaml/.yml) or JSON with comments (.json/.jsonc)
//  3. QUICKSTART_* environment variables
//  4. command-line flags that were explicitly set
//
// Layers 3 and 4 go through spf13/viper.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/project-quickstart/internal/model"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "QUICKSTART"

// DefaultTemplateURL is the starter kit downloaded when nothing else is
// configured.
const DefaultTemplateURL = "https://github.com/ft-interactive/project-starter-kit/archive/master.zip"

// Config holds every tunable of a scaffolding run.
type Config struct {
	TemplateURL    string   `yaml:"template_url" json:"template_url"`
	ArchiveName    string   `yaml:"archive_name" json:"archive_name"`
	RemoveDirs     []string `yaml:"remove_dirs" json:"remove_dirs"`
	RemoveFiles    []string `yaml:"remove_files" json:"remove_files"`
	CommitMessage  string   `yaml:"commit_message" json:"commit_message"`
	InstallCommand string   `yaml:"install_command" json:"install_command"`
	StartCommand   string   `yaml:"start_command" json:"start_command"`
	AllowGitReuse  bool     `yaml:"allow_git_reuse" json:"allow_git_reuse"`
	GitStrictness  string   `yaml:"git_strictness" json:"git_strictness"`
	Tools          Tools    `yaml:"tools" json:"tools"`
}

// Tools names the external programs used by the pipeline.
type Tools struct {
	Curl string `yaml:"curl" json:"curl"`
	Tar  string `yaml:"tar" json:"tar"`
	Git  string `yaml:"git" json:"git"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TemplateURL:    DefaultTemplateURL,
		ArchiveName:    "psk.zip",
		RemoveDirs:     []string{"docs"},
		RemoveFiles:    []string{"README.md"},
		CommitMessage:  "project-starter-kit",
		InstallCommand: "npm install",
		StartCommand:   "npm start",
		AllowGitReuse:  true,
		GitStrictness:  string(model.StrictnessTracked),
		Tools:          Tools{Curl: "curl", Tar: "tar", Git: "git"},
	}
}

// candidateFiles are looked up in the home directory when no explicit
// config path is given.
var candidateFiles = []string{".quickstart.yaml", ".quickstart.yml", ".quickstart.json", ".quickstart.jsonc"}

// Load builds the effective configuration. path may be empty, in which case
// the first existing candidate file in home is used (if any). flags may be
// nil.
func Load(path, home string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findDefaultFile(home)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}
	cfg.applyOverrides(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findDefaultFile(home string) string {
	if home == "" {
		return ""
	}
	for _, name := range candidateFiles {
		p := filepath.Join(home, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// mergeFile overlays the settings present in the file at path onto c.
// Keys absent from the file keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var jsonData []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if doc == nil {
			return nil // empty file
		}
		if jsonData, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case ".json", ".jsonc":
		jsonData = jsonc.ToJSON(data)
	default:
		return fmt.Errorf("unsupported config file type %q (use .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}

	if err := validateDocument(path, jsonData); err != nil {
		return err
	}
	if err := json.Unmarshal(jsonData, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// overrideKeys maps viper keys to the flag that can set them.
var overrideKeys = map[string]string{
	"template_url":    "template-url",
	"archive_name":    "",
	"commit_message":  "commit-message",
	"install_command": "install-command",
	"start_command":   "",
	"allow_git_reuse": "",
	"git_strictness":  "git-strictness",
	"tools.curl":      "",
	"tools.tar":       "",
	"tools.git":       "",
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, flagName := range overrideKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
		if flags == nil || flagName == "" {
			continue
		}
		if f := flags.Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", flagName, err)
			}
		}
	}
	return v, nil
}

// applyOverrides copies every key that was set through the environment or
// an explicitly-changed flag.
func (c *Config) applyOverrides(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("template_url", &c.TemplateURL)
	str("archive_name", &c.ArchiveName)
	str("commit_message", &c.CommitMessage)
	str("install_command", &c.InstallCommand)
	str("start_command", &c.StartCommand)
	str("git_strictness", &c.GitStrictness)
	str("tools.curl", &c.Tools.Curl)
	str("tools.tar", &c.Tools.Tar)
	str("tools.git", &c.Tools.Git)

	if v.IsSet("allow_git_reuse") {
		c.AllowGitReuse = v.GetBool("allow_git_reuse")
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.TemplateURL == "" {
		return errors.New("template_url must not be empty")
	}
	if c.ArchiveName == "" || filepath.Base(c.ArchiveName) != c.ArchiveName {
		return fmt.Errorf("archive_name must be a plain file name, got %q", c.ArchiveName)
	}
	if len(c.InstallArgs()) == 0 {
		return errors.New("install_command must not be empty")
	}
	if c.CommitMessage == "" {
		return errors.New("commit_message must not be empty")
	}
	if _, err := model.ParseGitStrictness(c.GitStrictness); err != nil {
		return err
	}
	for _, p := range append(append([]string{}, c.RemoveDirs...), c.RemoveFiles...) {
		clean := filepath.Clean(p)
		if p == "" || filepath.IsAbs(p) || clean == "." || strings.HasPrefix(clean, "..") {
			return fmt.Errorf("cleanup path %q must name an entry inside the project directory", p)
		}
	}
	return nil
}

// Strictness returns the parsed git strictness. Validate must have passed.
func (c *Config) Strictness() model.GitStrictness {
	s, _ := model.ParseGitStrictness(c.GitStrictness)
	return s
}

// InstallArgs splits InstallCommand into program and arguments.
func (c *Config) InstallArgs() []string {
	return strings.Fields(c.InstallCommand)
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
