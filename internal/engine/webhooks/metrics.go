package webhooks

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Metrics counts webhook traffic through the receiver.
type Metrics struct {
	Received      atomic.Int64
	Verified      atomic.Int64
	Rejected      atomic.Int64
	Duplicates    atomic.Int64
	Forwarded     atomic.Int64
	ForwardFailed atomic.Int64
}

// WritePrometheus writes the counters in the Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	counters := []struct {
		name, help string
		v          *atomic.Int64
	}{
		{"payos_webhooks_received_total", "Webhook requests received", &m.Received},
		{"payos_webhooks_verified_total", "Webhooks whose signature verified", &m.Verified},
		{"payos_webhooks_rejected_total", "Webhooks rejected during verification", &m.Rejected},
		{"payos_webhooks_duplicate_total", "Verified webhooks already stored", &m.Duplicates},
		{"payos_forward_success_total", "Successful deliveries to subscriptions", &m.Forwarded},
		{"payos_forward_failure_total", "Failed deliveries to subscriptions", &m.ForwardFailed},
	}

	fmt.Fprintf(w, "# HELP payos_up Is the receiver up\n")
	fmt.Fprintf(w, "# TYPE payos_up gauge\n")
	fmt.Fprintf(w, "payos_up 1\n")
	for _, c := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", c.name)
		fmt.Fprintf(w, "%s %d\n", c.name, c.v.Load())
	}
}
