package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/token"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and verify session tokens",
}

var (
	tokenClaims []string
	tokenTTL    time.Duration
)

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a signed session token",
	RunE:  runTokenCreate,
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify a session token and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenVerify,
}

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Hash a password",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	tokenCreateCmd.Flags().StringArrayVar(&tokenClaims, "claim", nil, "claim as key=value (repeatable)")
	tokenCreateCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (configured default when zero)")
	tokenCmd.AddCommand(tokenCreateCmd, tokenVerifyCmd)
	rootCmd.AddCommand(tokenCmd, hashCmd)
}

func runTokenCreate(cmd *cobra.Command, args []string) error {
	claims := make(map[string]any, len(tokenClaims))
	for _, c := range tokenClaims {
		key, value, ok := strings.Cut(c, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid claim %q, expected key=value", c)
		}
		claims[key] = value
	}

	engine, err := buildEngine()
	if err != nil {
		return err
	}
	tok, err := engine.CreateAccessToken(claims, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}

func runTokenVerify(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	claims, err := engine.VerifyToken(args[0])
	switch {
	case errors.Is(err, token.ErrExpired):
		return fmt.Errorf("token expired")
	case errors.Is(err, token.ErrInvalid):
		return fmt.Errorf("token invalid")
	case err != nil:
		return err
	}

	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runHash(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}
	hash, err := engine.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
