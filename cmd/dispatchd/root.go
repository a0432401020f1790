package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/ambulink/dispatch-core/internal/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:           "dispatchd",
	Short:         "Emergency dispatch core",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var (
	tokenOperator string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator bearer token signed with JWT_SECRET",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOperator, "operator", "", "operator id to embed")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("operator")

	rootCmd.AddCommand(serveCmd, tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": tokenOperator,
		"iat":         now.Unix(),
		"exp":         now.Add(tokenTTL).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
