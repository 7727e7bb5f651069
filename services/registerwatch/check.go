package registerwatch

import (
	"context"
	"fmt"
	"log/slog"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/textutil"
	"registrylens-backend/lib/timezone"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// matchesWatch decides whether a search row is the company the watch
// is about. A registration number pins it down exactly, otherwise the
// full name has to match.
func matchesWatch(watch Watch, company companieshouse.Company) bool {
	if watch.RegistrationNumber != "" {
		return textutil.NormalizeRegistrationNumber(company.LocalRegistrationNumber) == watch.RegistrationNumber
	}
	return textutil.SameName(company.PrimaryName, watch.CompanyName)
}

// checkWatch runs the watch query and records whether its company is
// still on the register. The first check only establishes a baseline,
// later flips trigger one notification each. State is written after
// the mail goes out, a failed send is retried on the next sweep.
func (s Service) checkWatch(ctx context.Context, watch Watch) error {
	ctx, span := tracer.Start(ctx, "checkWatch")
	defer span.End()
	span.SetAttributes(attribute.String("token", watch.Token))

	companies, err := s.search.Search(ctx, companieshouse.Query{
		Name:               watch.CompanyName,
		RegistrationNumber: watch.RegistrationNumber,
		Status:             watch.Status,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to search for watch")
		return err
	}

	listed := false
	for _, company := range companies {
		if matchesWatch(watch, company) {
			listed = true
			break
		}
	}
	span.SetAttributes(attribute.Bool("listed", listed))

	if watch.Listed != nil && *watch.Listed != listed {
		err := s.sendFlipMail(ctx, watch, listed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to send notification")
			return err
		}
	}

	_, err = s.db.ExecContext(
		ctx,
		"UPDATE watch SET listed = ?, last_checked_at = ? WHERE token = ?",
		listed, timezone.Now().Unix(), watch.Token,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record check result")
		return err
	}
	return nil
}

func (s Service) sendFlipMail(ctx context.Context, watch Watch, listed bool) error {
	subject := fmt.Sprintf("%s is no longer listed", watch.CompanyName)
	if listed {
		subject = fmt.Sprintf("%s is listed again", watch.CompanyName)
	}

	number := watch.RegistrationNumber
	if number == "" {
		number = "not set"
	}
	body := fmt.Sprintf(`Your register watch changed state.

Company name: %s
Registration number: %s
Status searched: %s
Listed: %t

You will get another email the next time this changes. Delete the
watch to stop these notifications.`,
		watch.CompanyName, number, watch.Status, listed)

	return s.mailer.Send(ctx, watch.Email, subject, body)
}

// CheckAll sweeps every watch once. A watch that fails to check is
// logged and skipped so one broken query cannot stall the rest.
func (s Service) CheckAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "CheckAll")
	defer span.End()

	watches, err := s.ListWatches(ctx, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list watches")
		return err
	}
	span.SetAttributes(attribute.Int("watches", len(watches)))

	// checks run in serial on purpose, the registry rate limits
	// aggressively
	for _, watch := range watches {
		err := s.checkWatch(ctx, watch)
		if err != nil {
			slog.WarnContext(ctx, "check watch", "token", watch.Token, "err", err)
		}
	}
	return nil
}

// WatchDaemon sweeps every watch on a fixed interval until ctx is
// cancelled.
func (s Service) WatchDaemon(ctx context.Context) {
	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.CheckAll(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "register watch sweep", "err", err)
			}
		}
	}
}
