package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/internal/application/tracking"
)

func sampleEvent() tracking.StockAdjustedEvent {
	return tracking.StockAdjustedEvent{
		EventID:          gofakeit.UUID(),
		ProductID:        gofakeit.UUID(),
		LotID:            gofakeit.UUID(),
		Delta:            40,
		PreviousQuantity: 10,
		NewQuantity:      50,
		MovementID:       gofakeit.UUID(),
		OccurredAt:       time.Now().UTC(),
	}
}

func TestStockPublisher_EnviaJSONConClaveProducto(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	evt := sampleEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != evt.ProductID {
			return errors.New("clave distinta al producto")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got tracking.StockAdjustedEvent
		if err := json.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got.LotID != evt.LotID || got.Delta != 40 || got.NewQuantity != 50 {
			return errors.New("payload inesperado")
		}
		return nil
	})

	pub := NewStockPublisher(producer, "stock.adjusted", nil)
	require.NoError(t, pub.PublishStockAdjusted(context.Background(), evt))
	require.NoError(t, pub.Close())
}

func TestStockPublisher_ErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewStockPublisher(producer, "stock.adjusted", nil)
	err := pub.PublishStockAdjusted(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestStockPublisher_ContextoCancelado(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewStockPublisher(producer, "stock.adjusted", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.PublishStockAdjusted(ctx, sampleEvent()), context.Canceled)
	require.NoError(t, pub.Close())
}
