package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StorageRecord is one persisted snapshot slot.
type StorageRecord struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

func (r *RecordRepository) GetByKey(ctx context.Context, key string) (*StorageRecord, error) {
	rec := &StorageRecord{}
	err := r.pool.QueryRow(ctx, `SELECT key, value, updated_at FROM storage_records WHERE key = $1`, key).
		Scan(&rec.Key, &rec.Value, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) Upsert(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO storage_records (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (r *RecordRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM storage_records WHERE key = $1`, key)
	return err
}
