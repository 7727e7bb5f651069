package main

import (
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/sicstore"
	sicdb "registrylens-backend/lib/sicstore/db"
	"registrylens-backend/lib/sqliteutil"
	"registrylens-backend/services/companysearch"
	"time"

	"github.com/go-chi/chi/v5"
)

type CompanySearchConfig struct {
	Database            sqliteutil.Config `json:"database"`
	MaxDirectoryAgeDays int               `json:"max_directory_age_days"`
	MaxRetries          int               `json:"max_retries"`
}

func InitCompanySearch(r chi.Router, cfg CompanySearchConfig) (companysearch.Service, error) {
	database, err := cfg.Database.OpenDB(sicdb.Schema)
	if err != nil {
		return companysearch.Service{}, err
	}

	client, err := companieshouse.NewClient(companieshouse.ClientOptions{
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return companysearch.Service{}, err
	}

	service := companysearch.NewService(client, sicstore.NewStore(database), companysearch.Options{
		MaxDirectoryAge: time.Duration(cfg.MaxDirectoryAgeDays) * 24 * time.Hour,
	})
	r.Mount("/v1", service.Router())
	return service, nil
}
