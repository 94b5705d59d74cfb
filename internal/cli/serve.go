package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/api"
)

var (
	serveAddr     string
	serveAPIToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the warden API daemon",
	RunE:  runServe,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the current security report",
	RunE:  runReport,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8750", "listen address")
	serveCmd.Flags().StringVar(&serveAPIToken, "api-token", "", "bearer token callers must present (WARDEN_API_TOKEN when empty)")
	rootCmd.AddCommand(serveCmd, reportCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	apiToken := serveAPIToken
	if apiToken == "" {
		apiToken = os.Getenv("WARDEN_API_TOKEN")
	}
	if apiToken == "" {
		return fmt.Errorf("no API token configured; set --api-token or WARDEN_API_TOKEN")
	}

	engine, err := buildEngine()
	if err != nil {
		return err
	}
	srv := api.NewServer(api.ServerConfig{Addr: serveAddr, APIToken: apiToken}, engine)

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

func runReport(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(engine.Report(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
