// Package workers fans opportunity events from Kafka out to handlers.
package workers

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/KalshiOdds/internal/kafka"
	"github.com/hetulpatel/KalshiOdds/internal/logging"
	"github.com/hetulpatel/KalshiOdds/internal/models"
	"github.com/hetulpatel/KalshiOdds/internal/queue"
)

type Handler func(context.Context, models.OpportunityEvent) error

// MessageReader is the subset of *kafka.Reader a worker needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Run starts workerCount consumers in the same group and blocks until ctx is done.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	RunWithReaders(ctx, workerCount, func() MessageReader {
		return kafka.NewReader(brokers, topic, group)
	}, handler)
}

// RunWithReaders is Run with a caller-supplied reader factory.
func RunWithReaders(ctx context.Context, workerCount int, newReader func() MessageReader, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := newReader()
			defer reader.Close()
			consume(ctx, reader, handler)
		}()
	}

	<-ctx.Done()
	wg.Wait()
}

func consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[worker] read error: %v", err)
			continue
		}

		ev, err := queue.DecodeOpportunity(msg)
		if err != nil {
			logging.Errorf("[worker] %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, ev); err != nil {
				logging.Errorf("[worker] handler error for %s: %v", ev.Key, err)
			}
		}
	}
}
