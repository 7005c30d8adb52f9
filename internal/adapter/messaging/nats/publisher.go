package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("estate-service/nats-publisher")

// Publisher emits JSON domain events on core NATS subjects.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *logger.Logger
}

// NewPublisher connects to url. Subjects are published as "<prefix>.<subject>" when prefix is set.
func NewPublisher(url, prefix string, log *logger.Logger, appName string) (*Publisher, error) {
	log = log.Named("NATSPublisher")
	log.Info("NATS Publisher: connecting", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Publisher: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Publisher: connected", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{conn: conn, prefix: prefix, logger: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	subject = qualify(p.prefix, subject)
	_, span := tracer.Start(ctx, "NATS.Publish."+subject)
	defer span.End()

	msg, err := newMessage(ctx, subject, data)
	if err != nil {
		p.logger.Error("NATS Publisher: failed to marshal event", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return err
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("NATS Publisher: failed to publish message", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Debug("NATS Publisher: message published", zap.String("subject", subject), zap.Int("data_size_bytes", len(msg.Data)))
	return nil
}

// Connected reports the connection state for readiness checks.
func (p *Publisher) Connected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Error("NATS Publisher: failed to drain connection", zap.Error(err))
	}
	p.conn.Close()
}

func newMessage(ctx context.Context, subject string, data interface{}) (*nats.Msg, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = payload
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))
	return msg, nil
}

func qualify(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// HeaderCarrier adapts nats.Header to the OpenTelemetry propagation carrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// NopPublisher drops events. Used when NATS_URL is empty.
type NopPublisher struct {
	logger *logger.Logger
}

func NewNopPublisher(log *logger.Logger) *NopPublisher {
	return &NopPublisher{logger: log.Named("NopPublisher")}
}

func (p *NopPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.logger.Debug("Event dropped, no broker configured", zap.String("subject", subject))
	return nil
}
