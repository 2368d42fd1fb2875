package client

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
	"payos/internal/pkg/logger"
	"payos/internal/pkg/validator"
	"payos/internal/platform/config"
)

const Version = "1.0.0"

// Client talks to the payment gateway. It is safe for concurrent use.
type Client struct {
	cfg              config.PayOSConfig
	httpClient       *http.Client
	logger           zerolog.Logger
	newIdempotencyID func() string
	sleep            func(ctx context.Context, d time.Duration) error

	// option state, resolved in New
	baseHTTP  *http.Client
	customLog *zerolog.Logger
	logLevel  string

	PaymentRequests *PaymentRequests
	Payouts         *Payouts
	PayoutsAccount  *PayoutsAccount
	Webhooks        *Webhooks
}

type Option func(*Client)

// WithHTTPClient sends requests through hc. Its transport is wrapped for logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.baseHTTP = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.customLog = &l }
}

// WithLogLevel overrides PAYOS_LOG / PayOSConfig.LogLevel.
func WithLogLevel(level string) Option {
	return func(c *Client) { c.logLevel = level }
}

func WithIdempotencyGenerator(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.newIdempotencyID = gen
		}
	}
}

func withSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New builds a client from cfg. Zero BaseURL and Timeout take the defaults.
func New(cfg config.PayOSConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validator.PositiveNumber("timeout", cfg.Timeout.Seconds()); err != nil {
		return nil, errors.Wrap(errors.KindConfiguration, err.Error(), err)
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New(errors.KindConfiguration, "max retries must not be negative")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:              cfg,
		newIdempotencyID: signature.NewIdempotencyID,
		sleep:            sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	level := c.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if c.customLog != nil {
		c.logger = *c.customLog
	} else {
		c.logger = logger.New(os.Stderr, logger.ParseLevel(level, zerolog.WarnLevel), "payos")
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	if c.baseHTTP != nil {
		copied := *c.baseHTTP
		hc = &copied
		if hc.Timeout == 0 {
			hc.Timeout = cfg.Timeout
		}
	}
	hc.Transport = &loggingTransport{base: hc.Transport, logger: c.logger}
	c.httpClient = hc

	c.PaymentRequests = &PaymentRequests{client: c, Invoices: &Invoices{client: c}}
	c.Payouts = &Payouts{client: c, Batch: &PayoutBatch{client: c}}
	c.PayoutsAccount = &PayoutsAccount{client: c}
	c.Webhooks = &Webhooks{client: c}
	return c, nil
}

// NewFromEnv reads PAYOS_* variables and builds a client.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := config.LoadPayOSFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func (c *Client) Config() config.PayOSConfig {
	return c.cfg
}

func (c *Client) ChecksumKey() string {
	return c.cfg.ChecksumKey
}

func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

func userAgent() string {
	return "PayOS-Go/" + Version + " (" + runtime.Version() + ")"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
