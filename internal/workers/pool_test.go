package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/KalshiOdds/internal/models"
)

type chanReader struct {
	msgs   chan kafkago.Message
	closed chan struct{}
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafkago.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error {
	close(r.closed)
	return nil
}

func eventMessage(t *testing.T, key string) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(models.OpportunityEvent{RunID: "run-1", Key: key, Threshold: 5})
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(key), Value: payload}
}

func TestRunWithReadersDeliversEvents(t *testing.T) {
	reader := &chanReader{msgs: make(chan kafkago.Message, 3), closed: make(chan struct{})}
	reader.msgs <- eventMessage(t, "k1")
	reader.msgs <- kafkago.Message{Value: []byte("not json")}
	reader.msgs <- eventMessage(t, "k2")

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var keys []string
	handler := func(_ context.Context, ev models.OpportunityEvent) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, ev.Key)
		if len(keys) == 2 {
			cancel()
		}
		return errors.New("handler errors are logged, not fatal")
	}

	done := make(chan struct{})
	go func() {
		RunWithReaders(ctx, 1, func() MessageReader { return reader }, handler)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
	assert.Equal(t, []string{"k1", "k2"}, keys)

	select {
	case <-reader.closed:
	default:
		t.Fatal("reader not closed")
	}
}

func TestRunWithReadersDefaultsToOneWorker(t *testing.T) {
	var mu sync.Mutex
	created := 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	RunWithReaders(ctx, 0, func() MessageReader {
		mu.Lock()
		created++
		mu.Unlock()
		return &chanReader{msgs: make(chan kafkago.Message), closed: make(chan struct{})}
	}, nil)
	assert.Equal(t, 1, created)
}
