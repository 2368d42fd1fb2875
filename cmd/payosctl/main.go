package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"payos/internal/client"
	"payos/internal/platform/config"
)

var version = "dev"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	baseURL  string
	logLevel string
}

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "payosctl",
		Short: "Operator tool for the payOS gateway",
		Long: `payosctl signs and verifies gateway payloads offline and calls the
merchant API with the PAYOS_CLIENT_ID, PAYOS_API_KEY and PAYOS_CHECKSUM_KEY
credentials from the environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "gateway base URL (default: PAYOS_BASE_URL or the production host)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log", "", "client log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		NewSignCmd(),
		NewIdempotencyKeyCmd(),
		NewWebhookCmd(opts),
		NewPaymentCmd(opts),
		NewPayoutCmd(opts),
		NewHashPasswordCmd(),
	)

	return rootCmd
}

// gateway builds an API client from the environment plus the global flags.
func (o *rootOptions) gateway() (*client.Client, error) {
	cfg, err := config.LoadPayOSFromEnv()
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	var clientOpts []client.Option
	if o.logLevel != "" {
		clientOpts = append(clientOpts, client.WithLogLevel(o.logLevel))
	}
	return client.New(cfg, clientOpts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// readInput resolves a --data style argument: inline JSON, @path, or - for stdin.
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(cmd.InOrStdin())
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	case arg == "":
		return nil, fmt.Errorf("no input: pass JSON, @file or -")
	}
	return []byte(arg), nil
}

func decodeInput(cmd *cobra.Command, arg string, dst any) error {
	raw, err := readInput(cmd, arg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	return nil
}
