package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"payos/internal/engine/signature"
)

type signOptions struct {
	key         string
	data        string
	algorithm   string
	noEncodeURI bool
	sortArrays  bool
}

func (o *signOptions) checksumKey() string {
	if o.key != "" {
		return o.key
	}
	return os.Getenv("PAYOS_CHECKSUM_KEY")
}

func (o *signOptions) payload(cmd *cobra.Command) (signature.Value, error) {
	raw, err := readInput(cmd, o.data)
	if err != nil {
		return signature.Value{}, err
	}
	return signature.Parse(raw)
}

func (o *signOptions) canonicalOptions() []signature.Option {
	return []signature.Option{
		signature.WithEncodeURI(!o.noEncodeURI),
		signature.WithSortArrays(o.sortArrays),
	}
}

type signResult struct {
	Algorithm string `json:"algorithm"`
	Canonical string `json:"canonical"`
	Signature string `json:"signature"`
}

func NewSignCmd() *cobra.Command {
	opts := &signOptions{}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute gateway signatures offline",
	}
	cmd.PersistentFlags().StringVar(&opts.key, "key", "", "checksum key (default: PAYOS_CHECKSUM_KEY)")
	cmd.PersistentFlags().StringVarP(&opts.data, "data", "d", "", "payload as JSON, @file or - for stdin")
	cmd.PersistentFlags().BoolVar(&opts.noEncodeURI, "no-encode-uri", false, "do not URI-encode values")
	cmd.PersistentFlags().BoolVar(&opts.sortArrays, "sort-arrays", false, "sort arrays before rendering")

	objectCmd := &cobra.Command{
		Use:   "object",
		Short: "Sign a mapping the way webhook data is signed (HMAC-SHA256)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.payload(cmd)
			if err != nil {
				return err
			}
			canonical, err := signature.Canonicalize(v, opts.canonicalOptions()...)
			if err != nil {
				return err
			}
			sig, ok := signature.SignObject(v, opts.checksumKey(), opts.canonicalOptions()...)
			if !ok {
				return fmt.Errorf("nothing to sign: need a key and a non-null payload")
			}
			return printJSON(cmd.OutOrStdout(), signResult{Algorithm: string(signature.SHA256), Canonical: canonical, Signature: sig})
		},
	}

	paymentCmd := &cobra.Command{
		Use:   "payment-request",
		Short: "Sign the amount, cancelUrl, description, orderCode and returnUrl of a payment link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.payload(cmd)
			if err != nil {
				return err
			}
			canonical, ok := signature.PaymentRequestString(v)
			if !ok {
				return fmt.Errorf("payload needs amount, cancelUrl, description, orderCode and returnUrl")
			}
			sig, ok := signature.SignPaymentRequest(v, opts.checksumKey())
			if !ok {
				return fmt.Errorf("a checksum key is required")
			}
			return printJSON(cmd.OutOrStdout(), signResult{Algorithm: string(signature.SHA256), Canonical: canonical, Signature: sig})
		},
	}

	hmacCmd := &cobra.Command{
		Use:   "hmac",
		Short: "Sign any payload with a chosen HMAC algorithm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := signature.ParseAlgorithm(opts.algorithm)
			if err != nil {
				return err
			}
			v, err := opts.payload(cmd)
			if err != nil {
				return err
			}
			canonicalOpts := append(opts.canonicalOptions(), signature.WithAlgorithm(alg))
			canonical, err := signature.Canonicalize(v, canonicalOpts...)
			if err != nil {
				return err
			}
			sig, err := signature.Sign(opts.checksumKey(), v, canonicalOpts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), signResult{Algorithm: string(alg), Canonical: canonical, Signature: sig})
		},
	}
	hmacCmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", string(signature.SHA256), "md5, sha1, sha256 or sha512")

	cmd.AddCommand(objectCmd, paymentCmd, hmacCmd)
	return cmd
}

func NewIdempotencyKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idempotency-key",
		Short: "Print a fresh idempotency key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), signature.NewIdempotencyID())
			return err
		},
	}
}
