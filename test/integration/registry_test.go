// Package integration exercises the scraper against a real http
// server instead of httptest, pulling nginx up through docker. The
// tests skip unless REGISTRYLENS_INTEGRATION is set.
package integration

import (
	"context"
	"io"
	"log"
	"os"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const fixtureDir = "../../lib/scrapers/companieshouse/testdata"

func setupRegistry(t *testing.T) string {
	if os.Getenv("REGISTRYLENS_INTEGRATION") == "" {
		t.Skip("set REGISTRYLENS_INTEGRATION to run docker-backed tests")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	nginx, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nginx:1.27-alpine",
				ExposedPorts: []string{"80/tcp"},
				Files: []testcontainers.ContainerFile{
					{
						HostFilePath:      fixtureDir + "/search_results.html",
						ContainerFilePath: "/usr/share/nginx/html/advanced-search/get-results",
						FileMode:          0o644,
					},
					{
						HostFilePath:      fixtureDir + "/sic_codes.html",
						ContainerFilePath: "/usr/share/nginx/html/sic/index.html",
						FileMode:          0o644,
					},
				},
				WaitingFor: wait.ForListeningPort("80/tcp"),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		err := nginx.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	})

	endpoint, err := nginx.Endpoint(context.Background(), "http")
	if err != nil {
		t.Fatal(err)
	}
	return endpoint
}

func TestScrapeThroughNginx(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:integration/registry")
	defer cleanup()

	endpoint := setupRegistry(t)

	client, err := companieshouse.NewClient(companieshouse.ClientOptions{
		BaseUrl: endpoint,
		SicUrl:  endpoint + "/sic/",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	companies, err := client.SearchCompanies(ctx, companieshouse.Query{
		Name:   "Atradius",
		Status: companieshouse.StatusActive,
	})
	require.NoError(t, err)
	require.Len(t, companies, 4)

	// descriptions resolve through the classification page served by
	// the same container
	require.Equal(t, "ATRADIUS COLLECTIONS LTD", companies[1].PrimaryName)
	require.Equal(t, "Activities of collection agencies", companies[1].IndustryCodes[0].Description)

	dir, err := client.IndustryCodes(ctx)
	require.NoError(t, err)
	require.Len(t, dir, 6)
}
