package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quizzy-service/internal/domain"
)

// ResultStore persists completed attempts in the attempts table. Strictly
// append and read: no update or delete paths exist.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Append(ctx context.Context, record domain.ResultRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (owner_id, score, total, completed_at) VALUES ($1, $2, $3, $4)`,
		record.OwnerID, record.Score, record.Total, record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *ResultStore) QueryAll(ctx context.Context) ([]domain.ResultRecord, error) {
	return s.query(ctx, `SELECT owner_id, score, total, completed_at FROM attempts`)
}

func (s *ResultStore) QueryByOwner(ctx context.Context, ownerID string) ([]domain.ResultRecord, error) {
	return s.query(ctx, `SELECT owner_id, score, total, completed_at FROM attempts WHERE owner_id=$1`, ownerID)
}

func (s *ResultStore) query(ctx context.Context, sql string, args ...interface{}) ([]domain.ResultRecord, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ResultRecord, 0)
	for rows.Next() {
		var r domain.ResultRecord
		if err := rows.Scan(&r.OwnerID, &r.Score, &r.Total, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return records, nil
}
