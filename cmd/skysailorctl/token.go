package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Domenick1991/skysailor/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token <userID>",
	Short: "Issue an access token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is not configured")
		}
		token, err := auth.NewTokens(cfg.JWT).Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
