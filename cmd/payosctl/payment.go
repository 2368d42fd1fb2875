package main

import (
	"os"

	"github.com/spf13/cobra"

	"payos/internal/client"
	"payos/internal/platform/models"
)

func NewPaymentCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment",
		Aliases: []string{"payment-request"},
		Short:   "Manage payment links",
	}

	var (
		data   string
		qrOut  string
		qrSize int
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.CreatePaymentLinkRequest
			if err := decodeInput(cmd, data, &req); err != nil {
				return err
			}
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			link, err := gw.PaymentRequests.Create(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if qrOut != "" {
				png, err := gw.PaymentRequests.QRCodePNG(link, qrSize)
				if err != nil {
					return err
				}
				if err := os.WriteFile(qrOut, png, 0644); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), link)
		},
	}
	createCmd.Flags().StringVarP(&data, "data", "d", "", "request as JSON, @file or - for stdin")
	createCmd.Flags().StringVar(&qrOut, "qr-out", "", "also write the VietQR code as PNG to this path")
	createCmd.Flags().IntVar(&qrSize, "qr-size", 512, "QR code size in pixels")

	getCmd := &cobra.Command{
		Use:   "get <id|order-code>",
		Short: "Show a payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			link, err := gw.PaymentRequests.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), link)
		},
	}

	var reason string
	cancelCmd := &cobra.Command{
		Use:   "cancel <id|order-code>",
		Short: "Cancel a payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			link, err := gw.PaymentRequests.Cancel(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), link)
		},
	}
	cancelCmd.Flags().StringVar(&reason, "reason", "", "cancellation reason")

	invoicesCmd := &cobra.Command{
		Use:   "invoices <id|order-code>",
		Short: "List the invoices of a payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			info, err := gw.PaymentRequests.Invoices.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}

	var outDir string
	downloadCmd := &cobra.Command{
		Use:   "download-invoice <id|order-code> <invoice-id>",
		Short: "Download an invoice document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := root.gateway()
			if err != nil {
				return err
			}
			file, err := gw.PaymentRequests.Invoices.Download(cmd.Context(), args[1], args[0])
			if err != nil {
				return err
			}
			path, err := file.SaveToDirectory(outDir)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"path":        path,
				"contentType": file.ContentType,
				"size":        file.Size,
			})
		},
	}
	downloadCmd.Flags().StringVarP(&outDir, "output-dir", "o", ".", "directory to save the file in")

	var (
		pngOut string
		size   int
	)
	qrCmd := &cobra.Command{
		Use:   "qr <qr-content>",
		Short: "Render a VietQR string as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := client.GenerateQRCode(args[0], size)
			if err != nil {
				return err
			}
			if pngOut == "" || pngOut == "-" {
				_, err = cmd.OutOrStdout().Write(png)
				return err
			}
			if err := os.WriteFile(pngOut, png, 0644); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"path": pngOut, "size": len(png)})
		},
	}
	qrCmd.Flags().StringVarP(&pngOut, "output", "o", "", "PNG path (default: stdout)")
	qrCmd.Flags().IntVar(&size, "size", 512, "size in pixels")

	cmd.AddCommand(createCmd, getCmd, cancelCmd, invoicesCmd, downloadCmd, qrCmd)
	return cmd
}
