package companysearch

import (
	"errors"
	"net/http"
	"registrylens-backend/lib/httputil"
	"registrylens-backend/lib/scrapers/companieshouse"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Router exposes the service as a plain json api.
func (s Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/search", s.handleSearch)
	r.Get("/industry-codes", s.handleIndustryCodes)
	r.Post("/industry-codes/refresh", s.handleRefreshIndustryCodes)
	return r
}

// scrapeErrorStatus separates "the registry told us to back off" from
// "the registry no longer looks like we expect". Neither is the
// caller's fault, so everything lands on 429 or 502.
func scrapeErrorStatus(err error) int {
	var rateLimited *companieshouse.RateLimitedError
	if errors.As(err, &rateLimited) {
		return http.StatusTooManyRequests
	}

	var transport *companieshouse.TransportError
	var malformed *companieshouse.MalformedPageError
	var unknown *companieshouse.UnknownEnumValueError
	var dateErr *companieshouse.DateParseError
	if errors.As(err, &transport) || errors.As(err, &malformed) ||
		errors.As(err, &unknown) || errors.As(err, &dateErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func writeScrapeError(w http.ResponseWriter, r *http.Request, err error) {
	var rateLimited *companieshouse.RateLimitedError
	if errors.As(err, &rateLimited) && rateLimited.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter/time.Second)))
	}
	httputil.WriteError(w, r, scrapeErrorStatus(err), err)
}

func (s Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := companieshouse.Query{
		Name:               params.Get("name"),
		RegistrationNumber: params.Get("number"),
	}
	if status := params.Get("status"); status != "" {
		parsed, err := companieshouse.ParseCompanyStatus(status)
		if err != nil {
			httputil.WriteError(w, r, http.StatusBadRequest, err)
			return
		}
		query.Status = parsed
	}

	companies, err := s.Search(r.Context(), query)
	if err != nil {
		writeScrapeError(w, r, err)
		return
	}
	httputil.WriteJson(w, r, http.StatusOK, companies)
}

type directoryPayload struct {
	RefreshedAt time.Time                            `json:"refreshed_at"`
	Codes       companieshouse.IndustryCodeDirectory `json:"codes"`
}

func (s Service) handleIndustryCodes(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Directory(r.Context())
	if err != nil {
		writeScrapeError(w, r, err)
		return
	}
	httputil.WriteJson(w, r, http.StatusOK, directoryPayload{
		RefreshedAt: snapshot.RefreshedAt,
		Codes:       snapshot.Directory,
	})
}

func (s Service) handleRefreshIndustryCodes(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.RefreshIndustryCodes(r.Context())
	if err != nil {
		writeScrapeError(w, r, err)
		return
	}
	httputil.WriteJson(w, r, http.StatusOK, directoryPayload{
		RefreshedAt: snapshot.RefreshedAt,
		Codes:       snapshot.Directory,
	})
}
