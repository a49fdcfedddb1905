package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/collectors"
	"github.com/hetulpatel/KalshiOdds/internal/hashutil"
)

const upsertContractSQL = `
INSERT INTO contracts (
	ticker, contract_id, title, subtitle, close_time, yes_bid, yes_ask, no_bid, no_ask,
	last_price, volume, text_hash, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(ticker) DO UPDATE SET
	contract_id=excluded.contract_id,
	title=excluded.title,
	subtitle=excluded.subtitle,
	close_time=excluded.close_time,
	yes_bid=excluded.yes_bid,
	yes_ask=excluded.yes_ask,
	no_bid=excluded.no_bid,
	no_ask=excluded.no_ask,
	last_price=excluded.last_price,
	volume=excluded.volume,
	text_hash=excluded.text_hash,
	last_seen_at=excluded.last_seen_at;
`

// UpsertContracts records the latest quote for each Kalshi contract.
func (s *Store) UpsertContracts(ctx context.Context, contracts []collectors.Contract) error {
	if len(contracts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertContractSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, c := range contracts {
		if err := execUpsertContract(ctx, stmt, c, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func execUpsertContract(ctx context.Context, stmt *sql.Stmt, c collectors.Contract, ts string) error {
	_, err := stmt.ExecContext(
		ctx,
		c.Ticker,
		c.ID,
		c.Title,
		c.Subtitle,
		formatTime(c.CloseTime),
		c.YesBid,
		c.YesAsk,
		c.NoBid,
		c.NoAsk,
		c.LastPrice,
		c.Volume,
		hashutil.HashStrings(c.Title, c.Subtitle),
		ts,
	)
	return err
}

// GetContract returns the stored quote for ticker.
func (s *Store) GetContract(ctx context.Context, ticker string) (*collectors.Contract, error) {
	var (
		c         collectors.Contract
		closeTime string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT ticker, contract_id, title, subtitle, close_time, yes_bid, yes_ask, no_bid, no_ask, last_price, volume
FROM contracts WHERE ticker = ?`, ticker).Scan(
		&c.Ticker, &c.ID, &c.Title, &c.Subtitle, &closeTime,
		&c.YesBid, &c.YesAsk, &c.NoBid, &c.NoAsk, &c.LastPrice, &c.Volume,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CloseTime = parseTime(closeTime)
	return &c, nil
}
