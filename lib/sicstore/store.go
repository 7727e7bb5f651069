// Package sicstore persists the SIC classification directory so
// searches do not have to pull the classification page from the
// registry every time.
package sicstore

import (
	"context"
	"database/sql"
	"errors"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/telemetry"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("registrylens.lib.sicstore")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Snapshot is the stored directory plus the time it was pulled from
// the registry. RefreshedAt is zero when the store has never been
// filled.
type Snapshot struct {
	Directory   companieshouse.IndustryCodeDirectory
	RefreshedAt time.Time
}

// Replace swaps out the entire stored directory in one transaction,
// codes that disappeared from the classification page disappear from
// the store too.
func (s Store) Replace(ctx context.Context, dir companieshouse.IndustryCodeDirectory, refreshedAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Replace")
	defer span.End()
	span.SetAttributes(attribute.Int("codes", len(dir)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "DELETE FROM sic_code")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	for code, description := range dir {
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO sic_code (code, description) VALUES (?, ?)",
			code, description,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO sic_directory_refresh (id, refreshed_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET refreshed_at = excluded.refreshed_at`,
		refreshedAt.Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return tx.Commit()
}

// Load returns the stored directory. Callers decide how stale is too
// stale from RefreshedAt.
func (s Store) Load(ctx context.Context) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	var refreshedAt int64
	err := s.db.QueryRowContext(
		ctx,
		"SELECT refreshed_at FROM sic_directory_refresh WHERE id = 1",
	).Scan(&refreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT code, description FROM sic_code")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}
	defer rows.Close()

	dir := companieshouse.IndustryCodeDirectory{}
	for rows.Next() {
		var code, description string
		if err := rows.Scan(&code, &description); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Snapshot{}, err
		}
		dir[code] = description
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	span.SetAttributes(attribute.Int("codes", len(dir)))
	return Snapshot{
		Directory:   dir,
		RefreshedAt: time.Unix(refreshedAt, 0),
	}, nil
}
