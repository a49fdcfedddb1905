package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hetulpatel/KalshiOdds/internal/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

const insertOpportunitySQL = `
INSERT INTO opportunities (
	run_id, opp_key, match_name, sportsbook, sportsbook_market,
	sportsbook_odds, sportsbook_implied_prob, kalshi_contract, kalshi_price,
	kalshi_implied_prob, edge_percentage, detected_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, opp_key) DO NOTHING;
`

// InsertReport stores the run row and all of its opportunities in one
// transaction. Re-inserting the same run is a no-op for rows already present.
func (s *Store) InsertReport(ctx context.Context, report models.ScanReport) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO scan_runs (run_id, started_at, finished_at, threshold, match_count, contract_count, opportunity_count)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
	finished_at=excluded.finished_at,
	opportunity_count=excluded.opportunity_count;`,
		report.RunID,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		report.Threshold,
		report.MatchCount,
		report.ContractCount,
		len(report.Opportunities),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert scan run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertOpportunitySQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, ev := range report.Events() {
		if err := execInsertOpportunity(ctx, stmt, ev); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert opportunity %s: %w", ev.Key, err)
		}
	}
	return tx.Commit()
}

// InsertOpportunityEvent stores a single consumed event. Duplicates are ignored,
// so redelivered Kafka messages are harmless.
func (s *Store) InsertOpportunityEvent(ctx context.Context, ev models.OpportunityEvent) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	stmt, err := s.db.PrepareContext(ctx, insertOpportunitySQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return execInsertOpportunity(ctx, stmt, ev)
}

func execInsertOpportunity(ctx context.Context, stmt *sql.Stmt, ev models.OpportunityEvent) error {
	opp := ev.Opportunity
	key := ev.Key
	if key == "" {
		key = opp.Key()
	}
	_, err := stmt.ExecContext(
		ctx,
		ev.RunID,
		key,
		opp.MatchName,
		opp.Sportsbook,
		opp.SportsbookMarket,
		opp.SportsbookOdds,
		opp.SportsbookImpliedProb,
		opp.KalshiContract,
		opp.KalshiPrice,
		opp.KalshiImpliedProb,
		opp.EdgePercentage,
		formatTime(ev.DetectedAt),
	)
	return err
}

// ListOpportunities returns stored opportunities ordered by edge, largest
// first. An empty runID lists across all runs; limit <= 0 means no limit.
func (s *Store) ListOpportunities(ctx context.Context, runID string, limit int) ([]models.OpportunityEvent, error) {
	query := `
SELECT run_id, opp_key, match_name, sportsbook, sportsbook_market,
	sportsbook_odds, sportsbook_implied_prob, kalshi_contract, kalshi_price,
	kalshi_implied_prob, edge_percentage, detected_at
FROM opportunities`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY edge_percentage DESC, detected_at ASC, opp_key ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var out []models.OpportunityEvent
	for rows.Next() {
		var (
			ev         models.OpportunityEvent
			detectedAt string
		)
		opp := &ev.Opportunity
		if err := rows.Scan(
			&ev.RunID, &ev.Key, &opp.MatchName, &opp.Sportsbook, &opp.SportsbookMarket,
			&opp.SportsbookOdds, &opp.SportsbookImpliedProb, &opp.KalshiContract, &opp.KalshiPrice,
			&opp.KalshiImpliedProb, &opp.EdgePercentage, &detectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		ev.DetectedAt = parseTime(detectedAt)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetRun loads the summary row for a scan. Opportunities are not populated.
func (s *Store) GetRun(ctx context.Context, runID string) (*models.ScanReport, int, error) {
	var (
		report            models.ScanReport
		started, finished string
		opportunityCount  int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, started_at, finished_at, threshold, match_count, contract_count, opportunity_count
FROM scan_runs WHERE run_id = ?`, runID).Scan(
		&report.RunID, &started, &finished, &report.Threshold,
		&report.MatchCount, &report.ContractCount, &opportunityCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("scan run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query scan run: %w", err)
	}
	report.StartedAt = parseTime(started)
	report.FinishedAt = parseTime(finished)
	return &report, opportunityCount, nil
}
