package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/slogfactory/pkg/db"
	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// PostgresClient is implemented by *pgxpool.Pool.
type PostgresClient interface {
	db.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres inserts records into a table shaped like the one created by db.Migrate.
type Postgres struct {
	logger.Processing
	client PostgresClient
	norm   *formatter.Normalizer
	table  string
	insert string
}

// NewPostgres creates a Postgres handler. table may be schema qualified;
// empty means db.DefaultTable.
func NewPostgres(client PostgresClient, table string, level slog.Level, bubble bool) *Postgres {
	if table == "" {
		table = db.DefaultTable
	}
	return &Postgres{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		client:     client,
		norm:       formatter.NewNormalizer(),
		table:      table,
		insert: "INSERT INTO " + pgx.Identifier(strings.Split(table, ".")).Sanitize() +
			" (channel, level, level_name, message, context, extra, formatted, created_at)" +
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
	}
}

func (h *Postgres) Table() string { return h.table }

func (h *Postgres) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, rec logger.Record, formatted []byte) error {
		return h.exec(ctx, h.client, rec, formatted)
	})
}

// HandleBatch inserts the handled records in a single transaction.
func (h *Postgres) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return db.WithTx(ctx, h.client, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if !h.IsHandling(rec.Level) {
				continue
			}
			rec = h.Process(ctx, rec)
			formatted, err := h.Formatter().Format(rec)
			if err != nil {
				return err
			}
			if err := h.exec(ctx, tx, rec, formatted); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close is a no-op: the pool is owned by the container.
func (h *Postgres) Close() error { return nil }

func (h *Postgres) exec(ctx context.Context, e execer, rec logger.Record, formatted []byte) error {
	attrs, err := jsonObject(h.norm.Attrs(rec.Attrs))
	if err != nil {
		return err
	}
	extra, err := jsonObject(h.norm.Attrs(rec.Extra))
	if err != nil {
		return err
	}
	_, err = e.Exec(ctx, h.insert,
		rec.Channel,
		logger.LevelCode(rec.Level),
		rec.LevelName(),
		rec.Message,
		attrs,
		extra,
		string(formatted),
		rec.Time,
	)
	return err
}

func jsonObject(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
