package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	jwtpkg "dynqr/redirector/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an owner API bearer token for development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadApp()
			if err != nil {
				return err
			}

			ownerID := uuid.New()
			if owner != "" {
				if ownerID, err = uuid.Parse(owner); err != nil {
					return fmt.Errorf("invalid --owner: %w", err)
				}
			}

			manager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
			token, err := manager.GenerateAccessToken(ownerID)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "owner: %s\n", ownerID)
			fmt.Fprintf(out, "token: %s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner UUID (random when empty)")
	return cmd
}
