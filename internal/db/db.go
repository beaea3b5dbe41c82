package db

import (
	"context"
	"time"

	"howlo/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// подключение к postgres, при ошибке процесс завершается
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("invalid DATABASE_URL", "error", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create db pool", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping db", "error", err)
	}

	logger.Info("database connected")
	return pool
}

// схема создаётся идемпотентно при старте
const schema = `
CREATE TABLE IF NOT EXISTS accomplishments (
	id                text PRIMARY KEY,
	user_id           text NOT NULL,
	challenge         text NOT NULL,
	tagged_user       text NOT NULL,
	companion_user_id text NOT NULL DEFAULT '',
	event_location    text NOT NULL DEFAULT '',
	created_at        timestamptz NOT NULL DEFAULT now(),
	month             smallint NOT NULL,
	year              integer NOT NULL,
	period_key        text NOT NULL,
	xp                integer NOT NULL DEFAULT 100,
	line_bonus        boolean NOT NULL DEFAULT false,
	line_bonus_at     timestamptz,
	full_board_bonus  boolean NOT NULL DEFAULT false,
	full_board_at     timestamptz
);

CREATE INDEX IF NOT EXISTS idx_accomplishments_user_period ON accomplishments (user_id, month, year);
CREATE INDEX IF NOT EXISTS idx_accomplishments_period_xp ON accomplishments (month, year, xp DESC);
CREATE INDEX IF NOT EXISTS idx_accomplishments_created_at ON accomplishments (created_at);

-- не больше одного бонуса каждого вида на пользователя за период
CREATE UNIQUE INDEX IF NOT EXISTS ux_accomplishments_line_bonus
	ON accomplishments (user_id, period_key) WHERE line_bonus;
CREATE UNIQUE INDEX IF NOT EXISTS ux_accomplishments_full_board_bonus
	ON accomplishments (user_id, period_key) WHERE full_board_bonus;

CREATE TABLE IF NOT EXISTS period_announcements (
	kind         text NOT NULL,
	period_key   text NOT NULL,
	announced_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, period_key)
);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
