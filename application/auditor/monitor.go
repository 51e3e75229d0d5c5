package auditor

import (
	"context"
	"time"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/client"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/protocol/auditor"
)

// A Monitor polls a registry server and audits it.
type Monitor struct {
	client  *client.Client
	auditor *auditor.Auditor
	logger  *application.Logger
}

// NewMonitor creates a Monitor from conf, starting from the registry's
// roster. logger may be nil.
func NewMonitor(conf *Config, logger *application.Logger) (*Monitor, error) {
	roster, err := application.LoadRoster(conf.RosterPath, conf.Encoding)
	if err != nil {
		return nil, err
	}
	c, err := client.New(conf.clientConfig())
	if err != nil {
		return nil, err
	}
	a, err := auditor.New(c.Hasher(), roster.Records)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = application.NewNopLogger()
	}
	return &Monitor{client: c, auditor: a, logger: logger}, nil
}

// Verified returns the latest commitment the monitor has verified.
func (m *Monitor) Verified() protocol.Commitment {
	return m.auditor.Verified()
}

// Poll fetches the server's commitment and the events the monitor has
// not seen yet, replays the events and audits the commitment against
// the result.
func (m *Monitor) Poll(ctx context.Context) error {
	c, err := m.client.Commitment(ctx)
	if err != nil {
		return err
	}
	events, err := m.client.Events(ctx, m.auditor.Verified().Version)
	if err != nil {
		return err
	}
	if err := m.auditor.Update(events); err != nil {
		return err
	}
	return m.auditor.Audit(c)
}

// Run polls the server every interval until ctx is done or an audit
// fails. Transport errors are logged and retried on the next tick.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := m.Poll(ctx)
		switch err.(type) {
		case nil:
			m.logger.Debug("Audit passed",
				"commitment", m.auditor.Verified().String())
		case protocol.ErrorCode:
			m.logger.Error("Audit failed", "error", err.Error(),
				"verified", m.auditor.Verified().String())
			return err
		default:
			m.logger.Warn("Cannot reach server", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
