package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"howlo/internal/domain"
	"howlo/internal/period"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const accomplishmentColumns = `id, user_id, challenge, tagged_user, companion_user_id, event_location,
		created_at, month, year, period_key, xp, line_bonus, line_bonus_at, full_board_bonus, full_board_at`

type AccomplishmentRepository struct {
	db *pgxpool.Pool
}

func NewAccomplishmentRepository(db *pgxpool.Pool) *AccomplishmentRepository {
	return &AccomplishmentRepository{db: db}
}

// сохраняет новую запись, id и created_at заполняются если пустые
func (r *AccomplishmentRepository) Insert(ctx context.Context, a *domain.Accomplishment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO accomplishments (id, user_id, challenge, tagged_user, companion_user_id, event_location,
			created_at, month, year, period_key, xp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.UserID, a.Challenge, a.TaggedUser, a.CompanionUserID, a.EventLocation,
		a.CreatedAt, a.Month, a.Year, a.PeriodKey, a.XP)
	if err != nil {
		return fmt.Errorf("insert accomplishment: %w", err)
	}
	return nil
}

// записи пользователя за период
func (r *AccomplishmentRepository) FindByUser(ctx context.Context, userID string, f period.Filter) ([]*domain.Accomplishment, error) {
	if f.Kind == period.FilterNone {
		return nil, nil
	}
	where, args := filterClause(f, 2)

	rows, err := r.db.Query(ctx, `
		SELECT `+accomplishmentColumns+`
		FROM accomplishments
		WHERE user_id = $1 AND `+where+`
		ORDER BY created_at
	`, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("find accomplishments: %w", err)
	}
	defer rows.Close()

	return scanAccomplishments(rows)
}

// есть ли у пользователя в периоде запись с этим бонусом
func (r *AccomplishmentRepository) HasBonus(ctx context.Context, userID string, f period.Filter, kind domain.BonusKind) (bool, error) {
	if f.Kind == period.FilterNone {
		return false, nil
	}
	col, _, err := bonusColumns(kind)
	if err != nil {
		return false, err
	}
	where, args := filterClause(f, 2)

	var exists bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accomplishments
			WHERE user_id = $1 AND `+col+` AND `+where+`
		)
	`, append([]any{userID}, args...)...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bonus: %w", err)
	}
	return exists, nil
}

// AwardBonus атомарно ставит флаг бонуса и добавляет XP записи, только если ни одна
// запись пользователя за этот период его ещё не имеет. Возвращает, сработало ли обновление.
func (r *AccomplishmentRepository) AwardBonus(ctx context.Context, id string, kind domain.BonusKind, at time.Time) (bool, error) {
	col, atCol, err := bonusColumns(kind)
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE accomplishments a
		SET `+col+` = true, `+atCol+` = $2, xp = a.xp + $3
		WHERE a.id = $1
		  AND NOT a.`+col+`
		  AND NOT EXISTS (
			SELECT 1 FROM accomplishments o
			WHERE o.user_id = a.user_id AND o.period_key = a.period_key AND o.`+col+`
		  )
	`, id, at, kind.XP())
	if err != nil {
		// параллельная заявка успела первой, сработал уникальный индекс
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("award %s bonus: %w", kind, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Aggregate группирует записи периода по пользователю: сумма XP, количество, бонусы.
// limit <= 0 - без ограничения
func (r *AccomplishmentRepository) Aggregate(ctx context.Context, f period.Filter, limit int) ([]domain.LeaderboardEntry, error) {
	if f.Kind == period.FilterNone {
		return nil, nil
	}
	where, args := filterClause(f, 1)

	query := `
		SELECT user_id, SUM(xp)::int AS total_xp, COUNT(*)::int AS cnt,
			BOOL_OR(line_bonus), BOOL_OR(full_board_bonus)
		FROM accomplishments
		WHERE ` + where + `
		GROUP BY user_id
		ORDER BY total_xp DESC, cnt DESC, user_id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	defer rows.Close()

	var result []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.TotalXP, &e.AccomplishmentCount, &e.HasLineBonus, &e.HasFullBoardBonus); err != nil {
			return nil, err
		}
		e.Rank = len(result) + 1
		result = append(result, e)
	}
	return result, rows.Err()
}

// условие WHERE для фильтра периода, плейсхолдеры начиная с argStart
func filterClause(f period.Filter, argStart int) (string, []any) {
	switch f.Kind {
	case period.FilterRange:
		return fmt.Sprintf("created_at >= $%d AND created_at < $%d", argStart, argStart+1), []any{f.Start, f.End}
	case period.FilterMonth:
		return fmt.Sprintf("month = $%d AND year = $%d", argStart, argStart+1), []any{f.Month, f.Year}
	}
	return "false", nil
}

// колонки флага и времени бонуса
func bonusColumns(kind domain.BonusKind) (string, string, error) {
	switch kind {
	case domain.BonusLine:
		return "line_bonus", "line_bonus_at", nil
	case domain.BonusFullBoard:
		return "full_board_bonus", "full_board_at", nil
	}
	return "", "", fmt.Errorf("unknown bonus kind %q", kind)
}

func scanAccomplishments(rows pgx.Rows) ([]*domain.Accomplishment, error) {
	var list []*domain.Accomplishment
	for rows.Next() {
		var a domain.Accomplishment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Challenge, &a.TaggedUser, &a.CompanionUserID, &a.EventLocation,
			&a.CreatedAt, &a.Month, &a.Year, &a.PeriodKey, &a.XP,
			&a.LineBonus, &a.LineBonusAt, &a.FullBoardBonus, &a.FullBoardAt,
		); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
