package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "odds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

func sampleReport() models.ScanReport {
	started := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	return models.ScanReport{
		RunID:         "run-1",
		StartedAt:     started,
		FinishedAt:    started.Add(3 * time.Second),
		Threshold:     5,
		MatchCount:    3,
		ContractCount: 10,
		Opportunities: []models.Opportunity{
			{
				MatchName: "Team A vs Team B", Sportsbook: "book", SportsbookMarket: "Team B +1.5",
				SportsbookOdds: 120, SportsbookImpliedProb: 45.45, KalshiContract: "SOCCER-B",
				KalshiPrice: 38, KalshiImpliedProb: 38, EdgePercentage: 7.45,
			},
			{
				MatchName: "Team A vs Team B", Sportsbook: "book", SportsbookMarket: "Team A -1.5",
				SportsbookOdds: -110, SportsbookImpliedProb: 52.38, KalshiContract: "SOCCER-A",
				KalshiPrice: 45, KalshiImpliedProb: 45, EdgePercentage: 7.38,
			},
		},
	}
}

func TestInsertReportAndList(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	report := sampleReport()

	require.NoError(t, store.InsertReport(ctx, report))
	// Idempotent for the same run.
	require.NoError(t, store.InsertReport(ctx, report))

	run, count, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, run.MatchCount)
	assert.Equal(t, 10, run.ContractCount)
	assert.True(t, report.StartedAt.Equal(run.StartedAt))

	opps, err := store.ListOpportunities(ctx, "run-1", 0)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, 7.45, opps[0].Opportunity.EdgePercentage)
	assert.Equal(t, "Team A -1.5", opps[1].Opportunity.SportsbookMarket)
	assert.Equal(t, report.Opportunities[1].Key(), opps[1].Key)
	assert.True(t, report.FinishedAt.Equal(opps[1].DetectedAt))

	limited, err := store.ListOpportunities(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.ListOpportunities(ctx, "other-run", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInsertOpportunityEventIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	ev := sampleReport().Events()[0]
	require.NoError(t, store.InsertOpportunityEvent(ctx, ev))
	require.NoError(t, store.InsertOpportunityEvent(ctx, ev))

	ev.Key = ""
	ev.RunID = "run-2"
	require.NoError(t, store.InsertOpportunityEvent(ctx, ev))

	opps, err := store.ListOpportunities(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, opps[0].Key, opps[1].Key, "missing key derived from the opportunity")
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)
	_, _, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertContracts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	closeAt := time.Date(2025, 4, 10, 19, 0, 0, 0, time.UTC)
	c := collectors.Contract{ID: "m1", Ticker: "SOCCER-A", Title: "A vs B", Subtitle: "Team A -1.5 goals", CloseTime: closeAt, YesAsk: 45, NoAsk: 57, Volume: 10}
	require.NoError(t, store.UpsertContracts(ctx, []collectors.Contract{c}))

	c.YesAsk = 47
	require.NoError(t, store.UpsertContracts(ctx, []collectors.Contract{c}))
	require.NoError(t, store.UpsertContracts(ctx, nil))

	got, err := store.GetContract(ctx, "SOCCER-A")
	require.NoError(t, err)
	assert.Equal(t, 47, got.YesAsk)
	assert.Equal(t, "Team A -1.5 goals", got.Subtitle)
	assert.True(t, closeAt.Equal(got.CloseTime))

	_, err = store.GetContract(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearAndDropTables(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.InsertReport(ctx, sampleReport()))

	require.NoError(t, store.ClearTables(ctx))
	opps, err := store.ListOpportunities(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, opps)

	require.NoError(t, store.DropTables(ctx))
	_, err = store.ListOpportunities(ctx, "", 0)
	assert.Error(t, err)
	require.NoError(t, store.CreateTables(ctx))
}
