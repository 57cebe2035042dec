package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/nycb2b/site/internal/auth"
)

func newHashPasswordCommand(c *cli) *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash the admin password read from stdin for admin.password_hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(c.in).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("hash-password: no password on stdin")
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("hash-password: password is empty")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
	return cmd
}
