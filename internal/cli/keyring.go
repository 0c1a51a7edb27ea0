package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailstate/internal/store"
)

func newKeyringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Manage the master password cached in the OS keyring",
	}
	cmd.AddCommand(newKeyringSetCmd())
	cmd.AddCommand(newKeyringClearCmd())
	return cmd
}

type jsonAction struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
}

func newKeyringSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the master password, read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Scan()
			if err := sc.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(sc.Text(), "\r")
			if password == "" {
				return errors.New("empty password")
			}

			if err := store.NewKeyringPasswordStore(cfg.Storage.DataDir).SavePassword(password); err != nil {
				return err
			}
			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), jsonAction{OK: true, Action: "keyring-set"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Master password saved to keyring.")
			return nil
		},
	}
}

func newKeyringClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := store.NewKeyringPasswordStore(cfg.Storage.DataDir).DeletePassword(); err != nil {
				return err
			}
			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), jsonAction{OK: true, Action: "keyring-clear"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Master password removed from keyring.")
			return nil
		},
	}
}
