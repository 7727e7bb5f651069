// Package registerwatch keeps standing advanced-search queries and
// emails their owners when the matched company appears on or falls
// off the register.
package registerwatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/telemetry"
	"registrylens-backend/lib/textutil"
	"registrylens-backend/lib/timezone"
	"registrylens-backend/services/companysearch"
	"strings"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("registrylens.services.registerwatch")

var ErrWatchNotFound = errors.New("watch not found")
var ErrInvalidWatch = errors.New("invalid watch")

type Options struct {
	// CheckInterval is how often the daemon sweeps every watch,
	// defaults to 6 hours.
	CheckInterval time.Duration
}

type Service struct {
	db     *sql.DB
	search companysearch.Service
	mailer Mailer
	opts   Options
}

func NewService(database *sql.DB, search companysearch.Service, mailer Mailer, opts Options) Service {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Hour * 6
	}
	return Service{
		db:     database,
		search: search,
		mailer: mailer,
		opts:   opts,
	}
}

type Watch struct {
	Token string `json:"token"`
	Email string `json:"email"`
	// CompanyName is matched in full against result names, not as a
	// substring. Pin the watch with RegistrationNumber when the full
	// name is unknown.
	CompanyName        string                       `json:"company_name"`
	RegistrationNumber string                       `json:"registration_number"`
	Status             companieshouse.CompanyStatus `json:"status"`

	// Listed is nil until the first check establishes a baseline.
	Listed        *bool      `json:"listed"`
	CreatedAt     time.Time  `json:"created_at"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
}

type CreateWatchRequest struct {
	Email              string `json:"email"`
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number"`
	// Status defaults to active.
	Status string `json:"status"`
}

func normalizeEmail(email string) string {
	return strings.Trim(strings.ToLower(email), " \t\n")
}

func (s Service) CreateWatch(ctx context.Context, req CreateWatchRequest) (Watch, error) {
	ctx, span := tracer.Start(ctx, "CreateWatch")
	defer span.End()

	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return Watch{}, fmt.Errorf("%w: bad email address %q", ErrInvalidWatch, req.Email)
	}
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return Watch{}, fmt.Errorf("%w: missing company name", ErrInvalidWatch)
	}

	status := companieshouse.StatusActive
	if req.Status != "" {
		parsed, err := companieshouse.ParseCompanyStatus(req.Status)
		if err != nil {
			return Watch{}, err
		}
		status = parsed
	}

	token, err := random.String(24)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate watch token")
		return Watch{}, err
	}

	number := textutil.NormalizeRegistrationNumber(req.RegistrationNumber)
	createdAt := timezone.Now()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO watch (token, email, company_name, registration_number, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		token, email, name, number, string(status), createdAt.Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert watch row")
		return Watch{}, err
	}

	span.SetAttributes(attribute.String("token", token))
	return Watch{
		Token:              token,
		Email:              email,
		CompanyName:        name,
		RegistrationNumber: number,
		Status:             status,
		CreatedAt:          createdAt,
	}, nil
}

const watchColumns = "token, email, company_name, registration_number, status, listed, created_at, last_checked_at"

func scanWatch(rows *sql.Rows) (Watch, error) {
	var watch Watch
	var status string
	var listed sql.NullInt64
	var createdAt int64
	var lastCheckedAt sql.NullInt64

	err := rows.Scan(
		&watch.Token,
		&watch.Email,
		&watch.CompanyName,
		&watch.RegistrationNumber,
		&status,
		&listed,
		&createdAt,
		&lastCheckedAt,
	)
	if err != nil {
		return Watch{}, err
	}

	watch.Status = companieshouse.CompanyStatus(status)
	if listed.Valid {
		value := listed.Int64 != 0
		watch.Listed = &value
	}
	watch.CreatedAt = time.Unix(createdAt, 0)
	if lastCheckedAt.Valid {
		value := time.Unix(lastCheckedAt.Int64, 0)
		watch.LastCheckedAt = &value
	}
	return watch, nil
}

// ListWatches returns every watch, oldest first. A non-empty email
// narrows the list to that owner.
func (s Service) ListWatches(ctx context.Context, email string) ([]Watch, error) {
	ctx, span := tracer.Start(ctx, "ListWatches")
	defer span.End()

	query := "SELECT " + watchColumns + " FROM watch ORDER BY created_at, token"
	var args []any
	if email != "" {
		query = "SELECT " + watchColumns + " FROM watch WHERE email = ? ORDER BY created_at, token"
		args = append(args, normalizeEmail(email))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query watches")
		return nil, err
	}
	defer rows.Close()

	watches := []Watch{}
	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scan watch row")
			return nil, err
		}
		watches = append(watches, watch)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read watch rows")
		return nil, err
	}

	span.SetAttributes(attribute.Int("watches", len(watches)))
	return watches, nil
}

func (s Service) GetWatch(ctx context.Context, token string) (Watch, error) {
	ctx, span := tracer.Start(ctx, "GetWatch")
	defer span.End()

	rows, err := s.db.QueryContext(
		ctx,
		"SELECT "+watchColumns+" FROM watch WHERE token = ?",
		token,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query watch")
		return Watch{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Watch{}, ErrWatchNotFound
	}
	return scanWatch(rows)
}

func (s Service) DeleteWatch(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "DeleteWatch")
	defer span.End()

	res, err := s.db.ExecContext(ctx, "DELETE FROM watch WHERE token = ?", token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete watch")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count deleted rows")
		return err
	}
	if affected == 0 {
		return ErrWatchNotFound
	}
	return nil
}
