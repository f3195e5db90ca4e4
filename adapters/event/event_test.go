package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}

func TestPublishProfileEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducerClient{ProfileEventsWriter: w, log: logger.NewNop()}
	userID := uuid.New()

	err := p.PublishProfileEvent(context.Background(), service.ProfileEvent{
		EventType:  service.ProfileEventCVUploaded,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, userID.String(), string(w.msgs[0].Key))

	var got service.ProfileEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, service.ProfileEventCVUploaded, got.EventType)
	assert.Equal(t, userID, got.UserID)

	w.err = errors.New("broker down")
	assert.Error(t, p.PublishProfileEvent(context.Background(), got))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestProfileEventConsumer_Run_CommitsHandledAndMalformed(t *testing.T) {
	ok, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventCVUploaded, UserID: uuid.New()})
	other, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventCVUploaded, UserID: uuid.New()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		queue: []kafka.Message{
			{Offset: 1, Value: []byte("{not json")},
			{Offset: 2, Value: ok},
			{Offset: 3, Value: other},
		},
		cancel: cancel,
	}
	c := &ProfileEventConsumer{reader: reader, log: logger.NewNop()}

	var handled int
	err := c.Run(ctx, func(_ context.Context, _ service.ProfileEvent) error {
		handled++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, handled)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestProfileEventConsumer_Run_StopsOnHandlerError(t *testing.T) {
	first, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventCVUploaded, UserID: uuid.New()})
	failing, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventCVUploaded, UserID: uuid.New()})
	later, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventCVUploaded, UserID: uuid.New()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		queue: []kafka.Message{
			{Offset: 1, Value: first},
			{Offset: 2, Value: failing},
			{Offset: 3, Value: later},
		},
		cancel: cancel,
	}
	c := &ProfileEventConsumer{reader: reader, log: logger.NewNop()}

	uploadErr := errors.New("upload failed")
	var handled int
	err := c.Run(ctx, func(_ context.Context, _ service.ProfileEvent) error {
		handled++
		if handled == 2 {
			return uploadErr
		}
		return nil
	})

	require.ErrorIs(t, err, uploadErr)
	assert.Equal(t, 2, handled)
	assert.Equal(t, []int64{1}, reader.committed)
	assert.Len(t, reader.queue, 1)
}
