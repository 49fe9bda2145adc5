package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/dice-autopilot/internal/secrets"
)

var secretsCommand = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the stored account password",
}

var secretsSetCommand = &cobra.Command{
	Use:   "set <email>",
	Short: "Store the account password in the OS keychain",
	Long:  "Reads the password from stdin and stores it in the OS keychain so runs never need it on the command line.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Password: ")
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if err := secrets.SetPassword(args[0], strings.TrimSpace(password)); err != nil {
			return err
		}
		fmt.Println("Password stored.")
		return nil
	},
}

var secretsDeleteCommand = &cobra.Command{
	Use:   "delete <email>",
	Short: "Remove the account password from the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := secrets.DeletePassword(args[0]); err != nil {
			return err
		}
		fmt.Println("Password removed.")
		return nil
	},
}

func init() {
	secretsCommand.AddCommand(secretsSetCommand)
	secretsCommand.AddCommand(secretsDeleteCommand)
	rootCmd.AddCommand(secretsCommand)
}
