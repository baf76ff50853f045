package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"menu-admin-go/auth"
)

// hashPasswordCmd prints a bcrypt hash usable as ADMIN_PASSWORD or
// USER_PASSWORD.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
