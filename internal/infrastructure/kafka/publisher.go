package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/pkg/config"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

var _ tracking.EventPublisher = (*StockPublisher)(nil)

// StockPublisher publica los ajustes de stock en un tópico de Kafka.
// La clave del mensaje es el producto, así los eventos de un mismo producto quedan ordenados.
type StockPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewStockPublisher envuelve un SyncProducer ya creado.
func NewStockPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *StockPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &StockPublisher{producer: producer, topic: topic, log: log}
}

// NewSyncProducer crea el productor síncrono con acks de todas las réplicas.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

// PublishStockAdjusted serializa el evento a JSON y lo envía.
func (p *StockPublisher) PublishStockAdjusted(ctx context.Context, evt tracking.StockAdjustedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.ProductID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("stock.adjusted")},
			{Key: []byte("event_id"), Value: []byte(evt.EventID)},
		},
	})
	if err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Str("lot_id", evt.LotID).Msg("no se pudo publicar evento de stock")
		return fmt.Errorf("send stock event: %w", err)
	}
	p.log.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("product_id", evt.ProductID).
		Msg("evento de stock publicado")
	return nil
}

// Close libera el productor.
func (p *StockPublisher) Close() error {
	return p.producer.Close()
}
