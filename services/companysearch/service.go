// Package companysearch fronts the registry scraper with a persisted
// SIC directory, so repeated searches hit the classification page as
// rarely as possible.
package companysearch

import (
	"context"
	"log/slog"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/sicstore"
	"registrylens-backend/lib/telemetry"
	"registrylens-backend/lib/timezone"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("registrylens.services.companysearch")

// DefaultMaxDirectoryAge is how old the stored SIC directory may get
// before a search refreshes it. The classification list changes on
// the order of years, a month is already conservative.
const DefaultMaxDirectoryAge = time.Hour * 24 * 30

type Options struct {
	// MaxDirectoryAge overrides DefaultMaxDirectoryAge when positive.
	MaxDirectoryAge time.Duration
}

type Service struct {
	client *companieshouse.Client
	store  sicstore.Store
	opts   Options
}

func NewService(client *companieshouse.Client, store sicstore.Store, opts Options) Service {
	if opts.MaxDirectoryAge <= 0 {
		opts.MaxDirectoryAge = DefaultMaxDirectoryAge
	}
	return Service{
		client: client,
		store:  store,
		opts:   opts,
	}
}

// directory returns a usable SIC snapshot, refreshing the stored one
// when it is missing or older than MaxDirectoryAge. A failed refresh
// falls back on the stale copy when there is one, searches should not
// break just because the classification page is down.
func (s Service) directory(ctx context.Context) (sicstore.Snapshot, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return sicstore.Snapshot{}, err
	}
	if !snapshot.RefreshedAt.IsZero() &&
		timezone.Now().Sub(snapshot.RefreshedAt) <= s.opts.MaxDirectoryAge {
		return snapshot, nil
	}

	refreshed, err := s.RefreshIndustryCodes(ctx)
	if err != nil {
		if !snapshot.RefreshedAt.IsZero() {
			slog.WarnContext(
				ctx, "sic directory refresh failed, serving stale copy",
				"refreshed_at", snapshot.RefreshedAt,
				"err", err,
			)
			return snapshot, nil
		}
		return sicstore.Snapshot{}, err
	}
	return refreshed, nil
}

// Search runs an advanced-search query against the registry using
// the stored SIC directory.
func (s Service) Search(ctx context.Context, query companieshouse.Query) ([]companieshouse.Company, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("name", query.Name))

	snapshot, err := s.directory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve sic directory")
		return nil, err
	}

	companies, err := s.client.SearchCompaniesUsing(ctx, query, snapshot.Directory)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to search companies")
		return nil, err
	}
	span.SetAttributes(attribute.Int("companies", len(companies)))
	return companies, nil
}

// RefreshIndustryCodes pulls the classification page and replaces the
// stored directory with it.
func (s Service) RefreshIndustryCodes(ctx context.Context) (sicstore.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "RefreshIndustryCodes")
	defer span.End()

	dir, err := s.client.IndustryCodes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sic classification")
		return sicstore.Snapshot{}, err
	}

	now := timezone.Now()
	err = s.store.Replace(ctx, dir, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store sic directory")
		return sicstore.Snapshot{}, err
	}

	span.SetAttributes(attribute.Int("codes", len(dir)))
	return sicstore.Snapshot{
		Directory:   dir,
		RefreshedAt: now,
	}, nil
}

// Directory returns a usable SIC snapshot, refreshing the stored one
// when it has gone stale.
func (s Service) Directory(ctx context.Context) (sicstore.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Directory")
	defer span.End()

	snapshot, err := s.directory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve sic directory")
		return sicstore.Snapshot{}, err
	}
	return snapshot, nil
}
