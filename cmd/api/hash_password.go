package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"order-webhook-service/internal/service"

	"github.com/spf13/cobra"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the Argon2id hash for admin.password_hash",
		Long: `Hashes the given password, or the first line of stdin when no argument
is given, and prints the encoded Argon2id hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := service.NewArgon2HashService().Hash(password)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
