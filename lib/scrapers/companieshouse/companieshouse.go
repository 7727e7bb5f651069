// Package companieshouse scrapes the Companies House advanced-search
// listing into typed records. The registry offers no stable public
// feed for this listing, so everything here leans on the rendered
// markup and fails loudly when it drifts.
package companieshouse

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"registrylens-backend/lib/restyutil"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseUrl = "https://find-and-update.company-information.service.gov.uk"
	DefaultSicUrl  = "https://resources.companieshouse.gov.uk/sic/"
)

type Client struct {
	BaseUrl *url.URL
	SicUrl  string
	Http    *resty.Client
}

type ClientOptions struct {
	// BaseUrl overrides the production registry, mostly for tests
	// pointed at a fixture server.
	BaseUrl string
	// SicUrl overrides the SIC classification page.
	SicUrl string
	// MaxRetries turns on resty's backoff for flaky networks. The
	// default of zero keeps every request single-shot so callers see
	// failures instead of silent retries.
	MaxRetries int
	RetryWait  time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SicUrl == "" {
		opts.SicUrl = DefaultSicUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	if opts.MaxRetries > 0 {
		client.SetRetryCount(opts.MaxRetries)
		if opts.RetryWait > 0 {
			client.SetRetryWaitTime(opts.RetryWait)
		}
	}
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		SicUrl:  opts.SicUrl,
		Http:    client,
	}, nil
}

type Query struct {
	// Name narrows results to companies whose name includes it.
	Name string
	// RegistrationNumber is matched as a case-sensitive substring
	// against each parsed row, the endpoint itself never sees it.
	RegistrationNumber string
	// Status defaults to StatusActive.
	Status CompanyStatus
}

func (q Query) withDefaults() Query {
	if q.Status == "" {
		q.Status = StatusActive
	}
	return q
}

func (c *Client) searchUrl(query Query) string {
	params := url.Values{}
	params.Set("companyNameIncludes", query.Name)
	// the documented advanced-search form has no status parameter,
	// the endpoint has accepted this one so far
	params.Set("status", string(query.Status))

	u := *c.BaseUrl
	u.Path = "/advanced-search/get-results"
	u.RawQuery = params.Encode()
	return u.String()
}

// SearchCompanies runs an advanced-search query against the registry,
// resolving SIC codes through a directory fetched fresh for this
// call. The listing and the directory load concurrently. Callers with
// a cached directory should use SearchCompaniesUsing instead.
func (c *Client) SearchCompanies(ctx context.Context, query Query) ([]Company, error) {
	ctx, span := tracer.Start(ctx, "client:SearchCompanies")
	defer span.End()

	query = query.withDefaults()

	var dir IndustryCodeDirectory
	var doc *goquery.Document

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		dir, err = c.IndustryCodes(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		doc, err = c.fetchDocument(egCtx, searchResultsPage, c.searchUrl(query))
		return err
	})
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load registry pages")
		return nil, err
	}

	companies, err := extractCompanies(ctx, doc, query, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract companies")
		return nil, err
	}
	span.SetAttributes(attribute.Int("companies", len(companies)))
	return companies, nil
}

// SearchCompaniesUsing is SearchCompanies with a caller-supplied SIC
// directory, saving the classification page fetch.
func (c *Client) SearchCompaniesUsing(ctx context.Context, query Query, dir IndustryCodeDirectory) ([]Company, error) {
	ctx, span := tracer.Start(ctx, "client:SearchCompaniesUsing")
	defer span.End()

	query = query.withDefaults()

	doc, err := c.fetchDocument(ctx, searchResultsPage, c.searchUrl(query))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load search results")
		return nil, err
	}

	companies, err := extractCompanies(ctx, doc, query, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract companies")
		return nil, err
	}
	span.SetAttributes(attribute.Int("companies", len(companies)))
	return companies, nil
}

// IndustryCodes downloads the full SIC classification table. An empty
// result is treated as markup drift rather than an empty directory.
func (c *Client) IndustryCodes(ctx context.Context) (IndustryCodeDirectory, error) {
	ctx, span := tracer.Start(ctx, "client:IndustryCodes")
	defer span.End()

	doc, err := c.fetchDocument(ctx, sicClassificationPage, c.SicUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load sic classification")
		return nil, err
	}

	dir := parseIndustryCodeDirectory(doc)
	if len(dir) == 0 {
		err := &MalformedPageError{
			Page:   sicClassificationPage,
			Row:    -1,
			Reason: "no code rows found",
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty sic directory")
		return nil, err
	}
	span.SetAttributes(attribute.Int("codes", len(dir)))
	return dir, nil
}

func (c *Client) fetchDocument(ctx context.Context, page, pageUrl string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(pageUrl)
	if err != nil {
		return nil, &TransportError{Url: pageUrl, Err: err}
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		return nil, &RateLimitedError{
			Url:        pageUrl,
			RetryAfter: parseRetryAfter(res.Header().Get("Retry-After")),
		}
	}
	if res.IsError() {
		return nil, &TransportError{Url: pageUrl, StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, &MalformedPageError{
			Page:   page,
			Row:    -1,
			Reason: err.Error(),
		}
	}
	return doc, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

func extractCompanies(ctx context.Context, doc *goquery.Document, query Query, dir IndustryCodeDirectory) ([]Company, error) {
	companies := []Company{}

	rows := doc.Find("tr.govuk-table__row")
	for i := 0; i < rows.Length(); i++ {
		row := rows.Eq(i)
		if !isResultRow(row) {
			continue
		}

		company, err := parseResultRow(ctx, row, i, dir, query.Status)
		if err != nil {
			return nil, err
		}

		// the endpoint exposes no number parameter, so the filter can
		// only run client side, on rows that already parsed fully
		if query.RegistrationNumber != "" &&
			!strings.Contains(company.LocalRegistrationNumber, query.RegistrationNumber) {
			continue
		}
		companies = append(companies, company)
	}

	return companies, nil
}
