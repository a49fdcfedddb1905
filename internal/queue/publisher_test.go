package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/KalshiOdds/internal/models"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func report() models.ScanReport {
	return models.ScanReport{
		RunID:      "run-9",
		FinishedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
		Threshold:  5,
		Opportunities: []models.Opportunity{
			{MatchName: "A vs B", Sportsbook: "book", SportsbookMarket: "A -1.5", SportsbookOdds: -110, KalshiContract: "T1", KalshiPrice: 45, EdgePercentage: 7.38},
		},
	}
}

func TestPublishOpportunities(t *testing.T) {
	w := &recordingWriter{}
	r := report()
	require.NoError(t, PublishOpportunities(context.Background(), w, r))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, r.Opportunities[0].Key(), string(msg.Key))
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, "run-9", string(msg.Headers[0].Value))

	ev, err := DecodeOpportunity(msg)
	require.NoError(t, err)
	assert.Equal(t, "run-9", ev.RunID)
	assert.Equal(t, 7.38, ev.Opportunity.EdgePercentage)
	assert.True(t, r.FinishedAt.Equal(ev.DetectedAt))
}

func TestPublishOpportunitiesNoop(t *testing.T) {
	require.NoError(t, PublishOpportunities(context.Background(), nil, report()))

	w := &recordingWriter{}
	require.NoError(t, PublishOpportunities(context.Background(), w, models.ScanReport{RunID: "empty"}))
	assert.Empty(t, w.msgs)
}

func TestPublishOpportunitiesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	err := PublishOpportunities(context.Background(), w, report())
	assert.EqualError(t, err, "broker down")
}

func TestDecodeOpportunity(t *testing.T) {
	ev, err := DecodeOpportunity(kafka.Message{Key: []byte("k1"), Value: []byte(`{"run_id":"r","opportunity":{"match_name":"A vs B"}}`)})
	require.NoError(t, err)
	assert.Equal(t, "k1", ev.Key)
	assert.Equal(t, "A vs B", ev.Opportunity.MatchName)

	_, err = DecodeOpportunity(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
