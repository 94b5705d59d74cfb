// Warden API daemon.
//
// Serves the policy engine over HTTP for command-execution services and
// authentication layers. Equivalent to "warden serve" without the rest of
// the CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardenhq/warden/internal/api"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/policy"
)

func main() {
	addr := flag.String("addr", ":8750", "listen address")
	configPath := flag.String("config", "", "path to policy config YAML")
	flag.Parse()

	if err := run(*addr, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(addr, configPath string) error {
	apiToken := os.Getenv("WARDEN_API_TOKEN")
	if apiToken == "" {
		return fmt.Errorf("WARDEN_API_TOKEN must be set")
	}

	var cfg *config.Config
	var err error
	if configPath == "" {
		cfg = config.Default()
		if key := os.Getenv("WARDEN_SIGNING_KEY"); key != "" {
			cfg.Auth.SigningKey = key
		}
	} else {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return err
		}
	}

	engine, err := policy.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build policy engine: %w", err)
	}
	srv := api.NewServer(api.ServerConfig{Addr: addr, APIToken: apiToken}, engine)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
