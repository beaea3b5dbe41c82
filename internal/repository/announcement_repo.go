package repository

import (
	"context"
	"fmt"
	"time"

	"howlo/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// хранит отметки об отправленных объявлениях границ периодов
type AnnouncementRepository struct {
	db *pgxpool.Pool
}

func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) IsAnnounced(ctx context.Context, kind domain.AnnouncementKind, periodKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM period_announcements WHERE kind = $1 AND period_key = $2)
	`, kind, periodKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check announcement: %w", err)
	}
	return exists, nil
}

// повторная отметка ничего не меняет
func (r *AnnouncementRepository) MarkAnnounced(ctx context.Context, kind domain.AnnouncementKind, periodKey string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO period_announcements (kind, period_key, announced_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, period_key) DO NOTHING
	`, kind, periodKey, at)
	if err != nil {
		return fmt.Errorf("mark announcement: %w", err)
	}
	return nil
}

// последние отправленные объявления, для /api/announcements
func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PeriodAnnouncement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, period_key, announced_at
		FROM period_announcements
		ORDER BY announced_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var list []*domain.PeriodAnnouncement
	for rows.Next() {
		var a domain.PeriodAnnouncement
		if err := rows.Scan(&a.Kind, &a.PeriodKey, &a.AnnouncedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
