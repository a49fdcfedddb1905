package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/KalshiOdds/internal/models"
)

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishOpportunities writes one message per opportunity in the report,
// keyed by the opportunity key.
func PublishOpportunities(ctx context.Context, writer MessageWriter, report models.ScanReport) error {
	if writer == nil || len(report.Opportunities) == 0 {
		return nil
	}

	events := report.Events()
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal opportunity %s: %w", ev.Key, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Key),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(report.RunID)},
			},
		})
	}
	return writer.WriteMessages(ctx, msgs...)
}

// DecodeOpportunity parses a message produced by PublishOpportunities.
func DecodeOpportunity(msg kafka.Message) (models.OpportunityEvent, error) {
	var ev models.OpportunityEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal opportunity event: %w", err)
	}
	if ev.Key == "" {
		ev.Key = string(msg.Key)
	}
	return ev, nil
}
