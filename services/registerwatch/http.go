package registerwatch

import (
	"errors"
	"net/http"
	"registrylens-backend/lib/httputil"
	"registrylens-backend/lib/scrapers/companieshouse"

	"github.com/go-chi/chi/v5"
)

// Router exposes watch management plus a manual sweep trigger.
func (s Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handleCreateWatch)
	r.Get("/", s.handleListWatches)
	r.Get("/{token}", s.handleGetWatch)
	r.Delete("/{token}", s.handleDeleteWatch)
	r.Post("/check", s.handleCheckAll)
	return r
}

// watchErrorStatus maps validation failures to 400 and missing tokens
// to 404. The enum error can only come from the caller's status field
// here.
func watchErrorStatus(err error) int {
	var unknown *companieshouse.UnknownEnumValueError
	if errors.Is(err, ErrInvalidWatch) || errors.As(err, &unknown) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrWatchNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s Service) handleCreateWatch(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.ReadJson[CreateWatchRequest](r)
	if err != nil {
		httputil.WriteError(w, r, http.StatusBadRequest, err)
		return
	}

	watch, err := s.CreateWatch(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, watchErrorStatus(err), err)
		return
	}
	httputil.WriteJson(w, r, http.StatusCreated, watch)
}

func (s Service) handleListWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := s.ListWatches(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		httputil.WriteError(w, r, watchErrorStatus(err), err)
		return
	}
	httputil.WriteJson(w, r, http.StatusOK, watches)
}

func (s Service) handleGetWatch(w http.ResponseWriter, r *http.Request) {
	watch, err := s.GetWatch(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, watchErrorStatus(err), err)
		return
	}
	httputil.WriteJson(w, r, http.StatusOK, watch)
}

func (s Service) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	err := s.DeleteWatch(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, watchErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s Service) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	err := s.CheckAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
