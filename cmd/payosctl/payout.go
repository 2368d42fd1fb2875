package main

import (
	"github.com/spf13/cobra"

	"payos/internal/platform/models"
)

func NewPayoutCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Manage payouts and the payout account",
	}

	var (
		data           string
		idempotencyKey string
		batch          bool
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a payout, or a batch with --batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			if batch {
				var req models.PayoutBatchRequest
				if err := decodeInput(cmd, data, &req); err != nil {
					return err
				}
				out, err := gw.Payouts.Batch.Create(cmd.Context(), &req, idempotencyKey)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			var req models.PayoutRequest
			if err := decodeInput(cmd, data, &req); err != nil {
				return err
			}
			out, err := gw.Payouts.Create(cmd.Context(), &req, idempotencyKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	createCmd.Flags().StringVarP(&data, "data", "d", "", "request as JSON, @file or - for stdin")
	createCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "reuse a key to make the call safe to repeat")
	createCmd.Flags().BoolVar(&batch, "batch", false, "the payload is a batch request")

	getCmd := &cobra.Command{
		Use:   "get <payout-id>",
		Short: "Show a payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			out, err := gw.Payouts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	var (
		params models.GetPayoutListParams
		state  string
		all    bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List payouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			params.ApprovalState = models.PayoutApprovalState(state)
			page, err := gw.Payouts.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			if all {
				payouts, err := page.All(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), payouts)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"payouts":    page.Data,
				"pagination": page.Pagination,
			})
		},
	}
	listCmd.Flags().StringVar(&params.ReferenceID, "reference-id", "", "filter by reference id")
	listCmd.Flags().StringVar(&state, "approval-state", "", "filter by approval state")
	listCmd.Flags().StringSliceVar(&params.Category, "category", nil, "filter by category")
	listCmd.Flags().StringVar(&params.FromDate, "from", "", "from date (ISO 8601)")
	listCmd.Flags().StringVar(&params.ToDate, "to", "", "to date (ISO 8601)")
	listCmd.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	listCmd.Flags().IntVar(&params.Offset, "offset", 0, "start offset")
	listCmd.Flags().BoolVar(&all, "all", false, "walk every page")

	var estimateData string
	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the credit a payout would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.PayoutRequest
			if err := decodeInput(cmd, estimateData, &req); err != nil {
				return err
			}
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			out, err := gw.Payouts.EstimateCredit(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	estimateCmd.Flags().StringVarP(&estimateData, "data", "d", "", "request as JSON, @file or - for stdin")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the payout account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			out, err := gw.PayoutsAccount.Balance(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd, estimateCmd, balanceCmd)
	return cmd
}
