// Package cli implements the warden CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/policy"
)

var Version = "0.1.0"

var configPath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Policy engine for privileged host operations",
	Long: `Warden decides whether privileged host operations (shell commands, file
mutations, process control) may run. It combines deny-pattern command
classification, a sliding-window rate limiter, signed session tokens,
password hashing, and an append-only security audit log behind one engine.

Callers must treat a denial as final.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to policy config YAML (built-in defaults when empty)")
}

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		if key := os.Getenv("WARDEN_SIGNING_KEY"); key != "" {
			cfg.Auth.SigningKey = key
		}
		return cfg, nil
	}
	return config.LoadFile(configPath)
}

// buildEngine constructs an engine from the effective configuration.
func buildEngine() (*policy.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	engine, err := policy.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy engine: %w", err)
	}
	return engine, nil
}
