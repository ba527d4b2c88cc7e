package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/kbtrainer/internal/repository"
)

// PostgresStorage stores slots as rows of the storage_records table.
type PostgresStorage struct {
	repo *repository.RecordRepository
}

func NewPostgresStorage(repo *repository.RecordRepository) *PostgresStorage {
	return &PostgresStorage{repo: repo}
}

func (p *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	rec, err := p.repo.GetByKey(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	return rec.Value, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := p.repo.Upsert(ctx, key, value); err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStorage) Remove(ctx context.Context, key string) error {
	if err := p.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}
