package commands

import (
	"registrylens-backend/lib/restyutil"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/serviceutil"
)

func newRegistryClient() *companieshouse.Client {
	companieshouse.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/registry"))

	client, err := companieshouse.NewClient(companieshouse.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize registry client", err)
	}
	return client
}
