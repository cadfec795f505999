// Package config loads typed configuration from environment variables, with
// optional .env file export. Pass -env <path> to point at a specific file;
// otherwise a ./.env is picked up when present.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// Config is the application-level configuration for the coordination layer.
type Config struct {
	// ClaudePath locates the CLI runtime binary.
	ClaudePath string `envconfig:"CLAUDE_CODE_PATH" default:"claude"`
	// ProjectRoot is where repos/, agents/ and conversations/ live.
	ProjectRoot string `envconfig:"PROJECT_ROOT" default:"."`
	// OutputDir enables stream capture mode when non-empty.
	OutputDir string `envconfig:"OUTPUT_DIR"`
	// InvokeTimeout bounds a single runtime invocation (0 = no limit).
	InvokeTimeout time.Duration `envconfig:"INVOKE_TIMEOUT" default:"0"`
	// DefaultModel is the model tier used when callers pass none.
	DefaultModel string `envconfig:"DEFAULT_MODEL" default:"balanced"`
	// SkipPermissions bypasses the runtime's interactive permission prompts.
	SkipPermissions bool `envconfig:"SKIP_PERMISSIONS" default:"false"`
	// OverwriteAgents allows re-registration to replace an existing agent.
	OverwriteAgents bool `envconfig:"OVERWRITE_AGENTS" default:"false"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// MustNew is New but panics on error. Intended for main() wiring.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New populates a T from prefixed environment variables, first exporting a
// .env file into the environment when one is configured or present.
func New[T any](prefix string) (*T, error) {
	filepath := resolveEnvPath()
	if filepath != "" {
		if err := exportEnvironment(filepath); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	viper.SetConfigFile(filepath)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	for k, v := range viper.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(v)); err != nil {
			return err
		}
	}

	return nil
}
