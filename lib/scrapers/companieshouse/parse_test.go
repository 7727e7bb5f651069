package companieshouse

import (
	"context"
	"errors"
	"registrylens-backend/lib/telemetry"
	"registrylens-backend/lib/timezone"
	"strings"
	"testing"
	"time"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/search_results.html
var searchResultsFixture string

var fixtureDirectory = IndustryCodeDirectory{
	"78109": "Activities of employment placement agencies (other than motion picture, television and other theatrical casting) n.e.c.",
	"82911": "Activities of collection agencies",
	"88100": "Social work activities without accommodation for the elderly and disabled",
}

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, timezone.Location)
	return &d
}

// fixtureCompanies lists every company in
// testdata/search_results.html in row order.
func fixtureCompanies(status CompanyStatus) []Company {
	cic := SubTypeCommunityInterestCompany
	return []Company{
		{
			PrimaryName:             "ATRADIUS CREDIT INSURANCE N.V.",
			LocalRegistrationNumber: "FC021059",
			RegisteredOfficeAddress: "David Ricardostraat 1, Amsterdam, 1066 JS",
			Status:                  status,
			Type:                    TypeOverseasCompany,
			ProfileHref:             "/company/FC021059",
		},
		{
			PrimaryName:             "ATRADIUS COLLECTIONS LTD",
			LocalRegistrationNumber: "10428815",
			RegisteredOfficeAddress: "3 Harbour Drive, Capital Waterside, Cardiff, Wales CF10 4WZ",
			Status:                  status,
			Type:                    TypePrivateLimitedCompany,
			IncorporationDate:       date(2016, time.October, 13),
			IndustryCodes: []IndustryCode{
				{Code: "82911", Description: "Activities of collection agencies"},
			},
			ProfileHref: "/company/10428815",
		},
		{
			PrimaryName:             "ATRADIUS COMMUNITY VENTURES CIC",
			LocalRegistrationNumber: "07850377",
			RegisteredOfficeAddress: "12 New Street, Huddersfield, England HD1 2AR",
			Status:                  status,
			Type:                    TypePrivateLimitedByGuarantee,
			SubType:                 &cic,
			IncorporationDate:       date(2011, time.November, 16),
			DissolvedDate:           date(2018, time.September, 11),
			IndustryCodes: []IndustryCode{
				{Code: "78109", Description: "Activities of employment placement agencies (other than motion picture, television and other theatrical casting) n.e.c."},
				{Code: "88100", Description: "Social work activities without accommodation for the elderly and disabled"},
			},
			ProfileHref: "/company/07850377",
		},
		{
			PrimaryName:             "ATRADIUS",
			LocalRegistrationNumber: "03642459",
			RegisteredOfficeAddress: "3 Harbour Drive, Capital Waterside, Cardiff, Wales CF10 4WZ",
			Status:                  status,
			Type:                    TypePrivateLimitedCompany,
			IncorporationDate:       date(1999, time.March, 1),
			IndustryCodes: []IndustryCode{
				{Code: "99999", Description: ""},
			},
			ProfileHref: "/company/03642459",
		},
	}
}

func parseDocument(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func resultRow(t *testing.T, row string) *goquery.Selection {
	doc := parseDocument(t, "<table><tbody>"+row+"</tbody></table>")
	return doc.Find("tr").First()
}

func TestExtractCompanies(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	doc := parseDocument(t, searchResultsFixture)
	companies, err := extractCompanies(
		context.Background(),
		doc,
		Query{Name: "Atradius", Status: StatusActive},
		fixtureDirectory,
	)
	require.NoError(t, err)

	diff := cmp.Diff(fixtureCompanies(StatusActive), companies)
	require.Empty(t, diff)
}

func TestExtractCompaniesFiltersOnRegistrationNumber(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	doc := parseDocument(t, searchResultsFixture)

	testCases := []struct {
		number   string
		expected []string
	}{
		{
			number:   "FC",
			expected: []string{"FC021059"},
		},
		{
			number:   "0377",
			expected: []string{"07850377"},
		},
		{
			number:   "10428815",
			expected: []string{"10428815"},
		},
		{
			number:   "ZZ999",
			expected: []string{},
		},
	}
	for _, test := range testCases {
		companies, err := extractCompanies(
			context.Background(),
			doc,
			Query{Name: "Atradius", RegistrationNumber: test.number, Status: StatusActive},
			fixtureDirectory,
		)
		require.NoError(t, err)
		require.NotNil(t, companies)

		numbers := []string{}
		for _, company := range companies {
			numbers = append(numbers, company.LocalRegistrationNumber)
		}
		diff := cmp.Diff(test.expected, numbers)
		require.Empty(t, diff)
	}
}

func TestParseResultRowRejectsUnknownType(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	row := resultRow(t, `<tr>
		<td>
			<a class="govuk-link" href="/company/00000001">EXAMPLE LTD (00000001)</a>
			<ul class="govuk-list">
				<li>Private limitd company</li>
				<li></li>
				<li>00000001 - Incorporated on 13 October 2016</li>
				<li></li>
				<li>1 Example Street, London</li>
				<li></li>
			</ul>
		</td>
	</tr>`)

	_, err := parseResultRow(context.Background(), row, 3, fixtureDirectory, StatusActive)

	var unknown *UnknownEnumValueError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "company type", unknown.Enum)
	require.Equal(t, "Private limitd company", unknown.Value)
	require.Equal(t, string(TypePrivateLimitedCompany), unknown.Closest)
}

func TestParseResultRowRejectsUnknownSubType(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	row := resultRow(t, `<tr>
		<td>
			<a class="govuk-link" href="/company/00000001">EXAMPLE LTD (00000001)</a>
			<ul class="govuk-list">
				<li>Private limited company</li>
				<li>Community Benefit Society</li>
				<li>00000001 - Incorporated on 13 October 2016</li>
				<li></li>
				<li>1 Example Street, London</li>
				<li></li>
			</ul>
		</td>
	</tr>`)

	_, err := parseResultRow(context.Background(), row, 0, fixtureDirectory, StatusActive)

	var unknown *UnknownEnumValueError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "company sub type", unknown.Enum)
	require.Equal(t, string(SubTypeCommunityInterestCompany), unknown.Closest)
}

func TestParseResultRowRequiresSixItems(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	row := resultRow(t, `<tr>
		<td>
			<a class="govuk-link" href="/company/00000001">EXAMPLE LTD (00000001)</a>
			<ul class="govuk-list">
				<li>Private limited company</li>
				<li></li>
				<li>00000001</li>
				<li></li>
				<li>1 Example Street, London</li>
			</ul>
		</td>
	</tr>`)

	_, err := parseResultRow(context.Background(), row, 7, fixtureDirectory, StatusActive)

	var malformed *MalformedPageError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, 7, malformed.Row)
	require.Contains(t, malformed.Reason, "expected 6")
}

func TestParseResultRowRequiresRegistrationNumber(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	row := resultRow(t, `<tr>
		<td>
			<a class="govuk-link" href="/company/00000001">EXAMPLE LTD (00000001)</a>
			<ul class="govuk-list">
				<li>Private limited company</li>
				<li></li>
				<li></li>
				<li></li>
				<li>1 Example Street, London</li>
				<li></li>
			</ul>
		</td>
	</tr>`)

	_, err := parseResultRow(context.Background(), row, 0, fixtureDirectory, StatusActive)

	var malformed *MalformedPageError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Reason, "registration number")
}

func TestParseResultRowRequiresAnchorAndList(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/companieshouse")
	defer cleanup()

	row := resultRow(t, `<tr>
		<td>
			<a class="govuk-link" href="/company/00000001">EXAMPLE LTD (00000001)</a>
		</td>
	</tr>`)

	_, err := parseResultRow(context.Background(), row, 0, fixtureDirectory, StatusActive)

	var malformed *MalformedPageError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Reason, "missing")
}

func TestParseEventDate(t *testing.T) {
	testCases := []struct {
		text     string
		expected *time.Time
	}{
		{
			text:     "Incorporated on 13 October 2016",
			expected: date(2016, time.October, 13),
		},
		{
			text:     "Dissolved on 11 September 2018",
			expected: date(2018, time.September, 11),
		},
		{
			text:     "First registered on 1 March 1999",
			expected: date(1999, time.March, 1),
		},
		{
			text:     "FC021059",
			expected: nil,
		},
		{
			text:     "",
			expected: nil,
		},
	}
	for _, test := range testCases {
		parsed, err := parseEventDate(test.text)
		require.NoError(t, err)
		diff := cmp.Diff(test.expected, parsed)
		require.Empty(t, diff)
	}
}

func TestParseEventDateErrors(t *testing.T) {
	testCases := []string{
		"Incorporated on someday",
		// the split keeps only the text between the first and second
		// markers, "notice" here
		"Put on notice on 1 March 1999",
	}
	for _, text := range testCases {
		_, err := parseEventDate(text)

		var dateErr *DateParseError
		require.ErrorAs(t, err, &dateErr)
		require.Equal(t, text, dateErr.Text)
		require.NotNil(t, errors.Unwrap(dateErr))
	}
}

func TestParseIndustryCodes(t *testing.T) {
	testCases := []struct {
		text     string
		expected []IndustryCode
	}{
		{
			text:     "",
			expected: nil,
		},
		{
			text: "SIC codes - 82911",
			expected: []IndustryCode{
				{Code: "82911", Description: "Activities of collection agencies"},
			},
		},
		{
			text: "SIC codes - 78109, 88100",
			expected: []IndustryCode{
				{Code: "78109", Description: "Activities of employment placement agencies (other than motion picture, television and other theatrical casting) n.e.c."},
				{Code: "88100", Description: "Social work activities without accommodation for the elderly and disabled"},
			},
		},
		{
			text: "SIC codes - 99999",
			expected: []IndustryCode{
				{Code: "99999", Description: ""},
			},
		},
	}
	for _, test := range testCases {
		codes, err := parseIndustryCodes(test.text, fixtureDirectory, 0)
		require.NoError(t, err)
		diff := cmp.Diff(test.expected, codes)
		require.Empty(t, diff)
	}
}

func TestParseIndustryCodesRequiresSeparator(t *testing.T) {
	_, err := parseIndustryCodes("SIC codes 82911", fixtureDirectory, 5)

	var malformed *MalformedPageError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, 5, malformed.Row)
	require.Contains(t, malformed.Reason, "separator")
}
