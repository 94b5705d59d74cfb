package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/pathsafe"
	"github.com/wardenhq/warden/internal/rules"
)

var checkKind string

var checkCmd = &cobra.Command{
	Use:   "check <command>",
	Short: "Check whether a command would be allowed",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var fileCheckOp string

var fileCheckCmd = &cobra.Command{
	Use:   "filecheck <path>",
	Short: "Check whether a file operation would be allowed",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileCheck,
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <text>",
	Short: "Sanitize untrusted input text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSanitize,
}

func init() {
	checkCmd.Flags().StringVar(&checkKind, "kind", "system", "command kind: system, file, process, application")
	fileCheckCmd.Flags().StringVar(&fileCheckOp, "op", "write", "operation: delete, modify, write, execute")
	rootCmd.AddCommand(checkCmd, fileCheckCmd, sanitizeCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, err := rules.ParseKind(checkKind)
	if err != nil {
		return err
	}
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	if engine.IsCommandSafe(args[0], kind) {
		fmt.Fprintln(cmd.OutOrStdout(), "allowed")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "denied")
	return &ExitCodeError{Code: 1}
}

func runFileCheck(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	if engine.CheckFileSafety(args[0], pathsafe.Operation(fileCheckOp)) {
		fmt.Fprintln(cmd.OutOrStdout(), "allowed")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "denied")
	return &ExitCodeError{Code: 1}
}

func runSanitize(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), engine.SanitizeInput(args[0]))
	return nil
}

// ExitCodeError carries a specific process exit code for denials.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
