package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/config"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes decoded events to NATS, one message per event,
// subject <prefix>.<chain>.<contract>. Disabled publishers accept and drop
// everything so callers need no enabled-check.
type NATSPublisher struct {
	conn   *nats.Conn
	config *config.NATSConfig
	logger *logger.Logger
}

var _ service.EventPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(cfg *config.NATSConfig, log *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		config: cfg,
		logger: log.WithComponent("nats-publisher"),
	}
}

// Connect connects to the NATS server
func (p *NATSPublisher) Connect(ctx context.Context) error {
	if !p.config.Enabled {
		p.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	p.logger.Info("Connecting to NATS server", zap.String("url", p.config.URL))

	opts := []nats.Option{
		nats.Name("evm-wallet-inspector"),
		nats.Timeout(p.config.ConnectTimeout),
		nats.ReconnectWait(p.config.ReconnectDelay),
		nats.MaxReconnects(p.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			p.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(p.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.conn = conn
	p.logger.Info("Successfully connected to NATS")
	return nil
}

// Disconnect drains and closes the connection
func (p *NATSPublisher) Disconnect() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// PublishEvents publishes a batch of decoded events
func (p *NATSPublisher) PublishEvents(ctx context.Context, chain entity.ChainID, contract common.Address, events []entity.DecodedEvent) error {
	if p.conn == nil {
		return nil
	}

	subject := fmt.Sprintf("%s.%s.%s", p.config.SubjectPrefix, chain, contract.Hex())
	for i := range events {
		payload, err := json.Marshal(&events[i])
		if err != nil {
			return fmt.Errorf("failed to marshal decoded event: %w", err)
		}
		if err := p.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("failed to publish decoded event: %w", err)
		}
	}

	p.logger.Debug("Published decoded events",
		zap.String("subject", subject),
		zap.Int("count", len(events)))
	return nil
}
