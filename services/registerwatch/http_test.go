package registerwatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"registrylens-backend/lib/scrapers/companieshouse"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupApi(t *testing.T, reg *testRegistry) (*httptest.Server, Service) {
	service, _, cleanup := setupService(t, reg, Options{})
	t.Cleanup(cleanup)

	server := httptest.NewServer(service.Router())
	t.Cleanup(server.Close)
	return server, service
}

func TestHandleCreateWatch(t *testing.T) {
	reg := newTestRegistry(t)
	api, _ := setupApi(t, reg)

	body := strings.NewReader(`{
		"email": " Alice@EXAMPLE.com ",
		"company_name": "Atradius Collections Ltd",
		"registration_number": "sc 123456",
		"status": "dissolved"
	}`)
	res, err := http.Post(api.URL+"/", "application/json", body)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var watch Watch
	err = json.NewDecoder(res.Body).Decode(&watch)
	require.NoError(t, err)
	require.NotEmpty(t, watch.Token)
	require.Equal(t, "alice@example.com", watch.Email)
	require.Equal(t, "SC123456", watch.RegistrationNumber)
	require.Equal(t, companieshouse.StatusDissolved, watch.Status)
}

func TestHandleCreateWatchRejectsBadInput(t *testing.T) {
	reg := newTestRegistry(t)
	api, _ := setupApi(t, reg)

	res, err := http.Post(api.URL+"/", "application/json",
		strings.NewReader(`{"email": "nobody", "company_name": "Atradius Collections Ltd"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var payload map[string]string
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	require.Contains(t, payload["error"], "bad email address")

	res, err = http.Post(api.URL+"/", "application/json",
		strings.NewReader(`{"email": "alice@example.com", "company_name": "Atradius Collections Ltd", "status": "zombie"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleListWatches(t *testing.T) {
	reg := newTestRegistry(t)
	api, service := setupApi(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.CreateWatch(ctx, CreateWatchRequest{
		Email:       "alice@example.com",
		CompanyName: "First Ltd",
	})
	require.NoError(t, err)
	_, err = service.CreateWatch(ctx, CreateWatchRequest{
		Email:       "bob@example.com",
		CompanyName: "Second Ltd",
	})
	require.NoError(t, err)

	res, err := http.Get(api.URL + "/?email=alice@example.com")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var watches []Watch
	err = json.NewDecoder(res.Body).Decode(&watches)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	require.Equal(t, "First Ltd", watches[0].CompanyName)
}

func TestHandleGetWatch(t *testing.T) {
	reg := newTestRegistry(t)
	api, service := setupApi(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	watch, err := service.CreateWatch(ctx, CreateWatchRequest{
		Email:       "alice@example.com",
		CompanyName: "Atradius Collections Ltd",
	})
	require.NoError(t, err)

	res, err := http.Get(api.URL + "/" + watch.Token)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var stored Watch
	err = json.NewDecoder(res.Body).Decode(&stored)
	require.NoError(t, err)
	require.Equal(t, watch.Token, stored.Token)

	res, err = http.Get(api.URL + "/missing")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHandleDeleteWatch(t *testing.T) {
	reg := newTestRegistry(t)
	api, service := setupApi(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	watch, err := service.CreateWatch(ctx, CreateWatchRequest{
		Email:       "alice@example.com",
		CompanyName: "Atradius Collections Ltd",
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, api.URL+"/"+watch.Token, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHandleCheckAll(t *testing.T) {
	reg := newTestRegistry(t)
	reg.listed = true
	api, service := setupApi(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	watch, err := service.CreateWatch(ctx, CreateWatchRequest{
		Email:       "alice@example.com",
		CompanyName: "Atradius Collections Ltd",
	})
	require.NoError(t, err)

	res, err := http.Post(api.URL+"/check", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	stored, err := service.GetWatch(ctx, watch.Token)
	require.NoError(t, err)
	require.NotNil(t, stored.Listed)
	require.True(t, *stored.Listed)
}
