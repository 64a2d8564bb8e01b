// Package events publica los movimientos de stock registrados en el outbox.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// EventTypeStockMovement tipo de evento publicado.
const EventTypeStockMovement = "stock.movement"

// Publisher destino de los eventos de stock.
type Publisher interface {
	Publish(ctx context.Context, events []*entity.StockEvent) error
	Close() error
}

// StockMovementMessage cuerpo JSON del mensaje.
type StockMovementMessage struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	EntryID     string    `json:"entry_id"`
	ProductCode string    `json:"product_code"`
	Change      int       `json:"change"`
	StockAfter  int       `json:"stock_after"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewStockMovementMessage convierte el evento del outbox en mensaje.
func NewStockMovementMessage(ev *entity.StockEvent) StockMovementMessage {
	return StockMovementMessage{
		EventID:     ev.ID,
		EventType:   EventTypeStockMovement,
		EntryID:     ev.EntryID,
		ProductCode: ev.ProductCode,
		Change:      ev.Change,
		StockAfter:  ev.StockAfter,
		Reason:      ev.Reason,
		ReferenceID: ev.ReferenceID,
		OccurredAt:  ev.OccurredAt,
	}
}

// KafkaPublisher productor síncrono: el relay solo marca publicado lo que Kafka confirmó.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewKafkaPublisher crea el productor contra los brokers.
func NewKafkaPublisher(brokers []string, topic, clientID string, log zerolog.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador kafka inicializado")
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

// NewKafkaPublisherWithProducer usa un productor ya construido.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// Publish envía el lote. La clave es el código de producto para conservar el orden por producto.
func (p *KafkaPublisher) Publish(_ context.Context, events []*entity.StockEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, ev := range events {
		body, err := json.Marshal(NewStockMovementMessage(ev))
		if err != nil {
			return fmt.Errorf("serializar evento %s: %w", ev.ID, err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(ev.ProductCode),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event_type"), Value: []byte(EventTypeStockMovement)},
				{Key: []byte("event_id"), Value: []byte(ev.ID)},
			},
		})
	}
	if err := p.producer.SendMessages(msgs); err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Int("events", len(msgs)).Msg("error publicando eventos de stock")
		return fmt.Errorf("enviar a kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// LogPublisher escribe los eventos en el log (sin KAFKA_BROKERS).
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, events []*entity.StockEvent) error {
	for _, ev := range events {
		p.log.Info().
			Str("event_id", ev.ID).
			Str("product_code", ev.ProductCode).
			Int("change", ev.Change).
			Int("stock_after", ev.StockAfter).
			Str("reason", ev.Reason).
			Str("reference_id", ev.ReferenceID).
			Msg(EventTypeStockMovement)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
