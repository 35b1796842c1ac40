package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "PIN management commands",
	}

	cmd.AddCommand(newPinChangeCmd())

	return cmd
}

func newPinChangeCmd() *cobra.Command {
	var oldPin, newPin string

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Change the authenticated account's PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldPin == "" || newPin == "" {
				return fmt.Errorf("--old and --new are required")
			}

			req := map[string]string{
				"old_pin": oldPin,
				"new_pin": newPin,
			}

			if err := client.Post("/api/v1/accounts/me/pin", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("PIN changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPin, "old", "", "Current PIN (required)")
	cmd.Flags().StringVar(&newPin, "new", "", "New PIN (required)")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
