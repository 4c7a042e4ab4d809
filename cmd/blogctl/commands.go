package main

import (
	"fmt"

	"github.com/shaoyi1998/blog-backend/internal/app"
	"github.com/shaoyi1998/blog-backend/internal/migration"
	"github.com/shaoyi1998/blog-backend/pkg/jwt"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed media settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := app.InitDB(cfg)
			if err != nil {
				return err
			}
			if err := migration.Run(db, app.MediaDefaults(cfg)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

func reclaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reclaim",
		Short: "Delete stored images no asset record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Assets.Reclaim(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "orphans: %d, deleted: %d\n", res.Total, res.Succeeded)
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report asset records without files and files without records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			issues, err := a.Assets.Audit(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintf(out, "%s\t%s\n", issue.Kind, issue.Path)
			}
			fmt.Fprintf(out, "%d issue(s)\n", len(issues))
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID   string
		nickname string
		isRoot   bool
	)
	command := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn).GenerateAccessToken(userID, nickname, isRoot)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	command.Flags().StringVarP(&userID, "user", "u", "admin", "user ID")
	command.Flags().StringVarP(&nickname, "nickname", "n", "", "nickname")
	command.Flags().BoolVar(&isRoot, "root", false, "grant root (article writes, admin routes)")
	return command
}
