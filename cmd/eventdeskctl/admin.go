package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	adminuserstore "github.com/dalemusser/eventdesk/internal/app/store/adminusers"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back-office admin account",
	Long: `Create an admin account in admin_users.

The password may be given with --password or EVENTDESK_ADMIN_PASSWORD.

Examples:
  eventdeskctl create-admin --email ops@example.com --name "Ops Lead"
  eventdeskctl create-admin --email root@example.com --role superadmin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			password = os.Getenv("EVENTDESK_ADMIN_PASSWORD")
		}
		if password == "" {
			return errors.New("a password is required (--password or EVENTDESK_ADMIN_PASSWORD)")
		}
		switch adminRole {
		case adminuserstore.RoleAdmin, adminuserstore.RoleSuperAdmin:
		default:
			return fmt.Errorf("unknown role %q", adminRole)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(context.Background())

		u, err := adminuserstore.New(db).Create(ctx, adminEmail, adminName, password, adminRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID.Hex())
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "full name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password (min 8 characters)")
	createAdminCmd.Flags().StringVar(&adminRole, "role", adminuserstore.RoleAdmin, "admin or superadmin")
	_ = createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}
