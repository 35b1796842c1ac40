package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <recipient> <amount>",
		Short: "Send kvrcoin to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			req := map[string]any{
				"to":     args[0],
				"amount": amount,
			}
			var result Account

			if err := client.Post("/api/v1/transfers", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
