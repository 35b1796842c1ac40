package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountMeCmd())
	cmd.AddCommand(newAccountGetCmd())
	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountUpdateCmd())
	cmd.AddCommand(newAccountDeleteCmd())

	return cmd
}

func newAccountMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Get("/api/v1/accounts/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Look up an account by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Get("/api/v1/accounts/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccountCreateCmd() *cobra.Command {
	var user, pin string
	var kvrcoin float64
	var chessPoints int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (requires admin API key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pin == "" {
				return fmt.Errorf("--user and --pin are required")
			}

			req := map[string]any{
				"username":     user,
				"pin":          pin,
				"kvrcoin":      kvrcoin,
				"chess_points": chessPoints,
			}
			var result Account

			if err := client.Post("/api/v1/accounts", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pin, "pin", "", "Account PIN (required)")
	cmd.Flags().Float64Var(&kvrcoin, "kvrcoin", 0, "Starting kvrcoin balance")
	cmd.Flags().Int64Var(&chessPoints, "chess-points", 0, "Starting chess points")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}

func newAccountUpdateCmd() *cobra.Command {
	var pin string
	var kvrcoin float64
	var chessPoints int64

	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Update account fields (requires admin API key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("pin") {
				req["pin"] = pin
			}
			if cmd.Flags().Changed("kvrcoin") {
				req["kvrcoin"] = kvrcoin
			}
			if cmd.Flags().Changed("chess-points") {
				req["chess_points"] = chessPoints
			}
			if len(req) == 0 {
				return fmt.Errorf("at least one of --pin, --kvrcoin, --chess-points is required")
			}

			var result Account
			if err := client.Patch("/api/v1/accounts/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "New account PIN")
	cmd.Flags().Float64Var(&kvrcoin, "kvrcoin", 0, "New kvrcoin balance")
	cmd.Flags().Int64Var(&chessPoints, "chess-points", 0, "New chess points")

	return cmd
}

func newAccountDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account (requires admin API key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/accounts/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Deleted account %s", args[0]))
			return nil
		},
	}
}
