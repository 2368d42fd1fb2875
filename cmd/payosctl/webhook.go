package main

import (
	"os"

	"github.com/spf13/cobra"

	"payos/internal/engine/webhooks"
)

func NewWebhookCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Verify webhook payloads and register the webhook URL",
	}

	var key string
	verifyCmd := &cobra.Command{
		Use:   "verify <file|->",
		Short: "Check a webhook body and print its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := args[0]
			if arg != "-" {
				arg = "@" + arg
			}
			raw, err := readInput(cmd, arg)
			if err != nil {
				return err
			}
			if key == "" {
				key = os.Getenv("PAYOS_CHECKSUM_KEY")
			}
			data, err := webhooks.Verify(raw, key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	verifyCmd.Flags().StringVar(&key, "key", "", "checksum key (default: PAYOS_CHECKSUM_KEY)")

	confirmCmd := &cobra.Command{
		Use:   "confirm <url>",
		Short: "Register the webhook URL with the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			out, err := gw.Webhooks.Confirm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.AddCommand(verifyCmd, confirmCmd)
	return cmd
}
