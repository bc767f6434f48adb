package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestProducer_PublishKeysMessage(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafkago.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == "order-1" && string(msgs[0].Value) == `{"to":"Shipped"}`
	})).Return(nil).Once()

	p := NewProducerWithWriter(w)
	require.NoError(t, p.Publish(context.Background(), "order-1", []byte(`{"to":"Shipped"}`)))
	w.AssertExpectations(t)
}

func TestProducer_PublishWrapsError(t *testing.T) {
	boom := errors.New("broker down")
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(boom)

	err := NewProducerWithWriter(w).Publish(context.Background(), "k", nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewProducer_Validates(t *testing.T) {
	_, err := NewProducer(Config{Topic: "t"})
	assert.Error(t, err)
	_, err = NewProducer(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "order-status"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}
