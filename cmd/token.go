package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yakoovad/productsite/internal/auth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token for the cache purge endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if appConfig.Auth.TokenSecret == "" {
			return errors.New("auth.token_secret must be set to issue tokens")
		}

		token, err := auth.GenerateToken(auth.TokenTypeAdmin, tokenSubject, tokenTTL)
		if err != nil {
			return errors.Wrap(err, "generate token")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "operator the token is issued to")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
