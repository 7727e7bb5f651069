package companieshouse

import (
	"context"
	"fmt"
	"registrylens-backend/lib/htmlutil"
	"registrylens-backend/lib/timezone"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchResultsPage     = "search results"
	sicClassificationPage = "sic classification"
)

// the listing renders every company as a table row holding one name
// anchor and a six-item description list:
//
//	<tr class="govuk-table__row">
//	  <td class="govuk-table__cell">
//	    <a class="govuk-link" href="/company/07850377">SHELTER SOLUTIONS CIC (07850377)</a>
//	    <ul class="govuk-list">
//	      <li>Private limited by guarantee without share capital</li>
//	      <li>Community Interest Company (CIC)</li>
//	      <li>07850377 - Incorporated on 16 November 2011</li>
//	      <li>Dissolved on 11 September 2018</li>
//	      <li>12 New Street, Huddersfield, England HD1 2AR</li>
//	      <li>SIC codes - 78109, 88100</li>
//	    </ul>
//	  </td>
//	</tr>
const resultListItems = 6

// the registry prints dates like "16 November 2011"
const dateLayout = "2 January 2006"

// isResultRow separates listings from table chrome, the header row
// carries the same row class but neither a name anchor nor a
// description list.
func isResultRow(row *goquery.Selection) bool {
	return row.Find("a.govuk-link").Length() > 0 ||
		row.Find("ul.govuk-list").Length() > 0
}

func parseResultRow(ctx context.Context, row *goquery.Selection, index int, dir IndustryCodeDirectory, status CompanyStatus) (Company, error) {
	links := htmlutil.GetAnchors(ctx, row.Find("a.govuk-link"))
	list := row.Find("ul.govuk-list")
	if len(links) == 0 || list.Length() == 0 {
		return Company{}, &MalformedPageError{
			Page:   searchResultsPage,
			Row:    index,
			Reason: "result row is missing its name anchor or description list",
		}
	}

	items := list.First().Find("li")
	if items.Length() != resultListItems {
		return Company{}, &MalformedPageError{
			Page:   searchResultsPage,
			Row:    index,
			Reason: fmt.Sprintf("expected %d description list items, got %d", resultListItems, items.Length()),
		}
	}
	itemText := func(i int) string {
		return htmlutil.CleanText(items.Eq(i).Text())
	}

	companyType, err := ParseCompanyType(itemText(0))
	if err != nil {
		return Company{}, err
	}

	var subType *CompanySubType
	if text := itemText(1); text != "" {
		parsed, err := ParseCompanySubType(text)
		if err != nil {
			return Company{}, err
		}
		subType = &parsed
	}

	registrationInfo := itemText(2)
	number := strings.Split(registrationInfo, " - ")[0]
	if number == "" {
		return Company{}, &MalformedPageError{
			Page:   searchResultsPage,
			Row:    index,
			Reason: fmt.Sprintf("no registration number in %q", registrationInfo),
		}
	}
	incorporationDate, err := parseEventDate(registrationInfo)
	if err != nil {
		return Company{}, err
	}

	dissolvedDate, err := parseEventDate(itemText(3))
	if err != nil {
		return Company{}, err
	}

	industryCodes, err := parseIndustryCodes(itemText(5), dir, index)
	if err != nil {
		return Company{}, err
	}

	// the anchor suffixes the name with the company number in parens,
	// cutting at the first paren also truncates names that contain
	// parens of their own
	name, _, _ := strings.Cut(links[0].Name, "(")

	return Company{
		PrimaryName:             strings.TrimSpace(name),
		LocalRegistrationNumber: number,
		RegisteredOfficeAddress: itemText(4),
		Status:                  status,
		Type:                    companyType,
		SubType:                 subType,
		IncorporationDate:       incorporationDate,
		DissolvedDate:           dissolvedDate,
		IndustryCodes:           industryCodes,
		ProfileHref:             links[0].Href,
	}, nil
}

// parseEventDate pulls the date out of text like "Incorporated on 16
// November 2011". Cells without an " on " marker simply carry no date.
func parseEventDate(text string) (*time.Time, error) {
	parts := strings.Split(text, " on ")
	if len(parts) < 2 {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, parts[1], timezone.Location)
	if err != nil {
		return nil, &DateParseError{Text: text, Err: err}
	}
	return &parsed, nil
}

// parseIndustryCodes splits a cell like "SIC codes - 78109, 88100"
// and resolves each code against the directory. Codes the directory
// does not know keep an empty description. An empty cell means the
// company is unclassified, which is distinct from zero codes.
func parseIndustryCodes(text string, dir IndustryCodeDirectory, row int) ([]IndustryCode, error) {
	if text == "" {
		return nil, nil
	}
	segments := strings.Split(text, " - ")
	if len(segments) < 2 {
		return nil, &MalformedPageError{
			Page:   searchResultsPage,
			Row:    row,
			Reason: fmt.Sprintf("sic code cell %q is missing its separator", text),
		}
	}

	tokens := strings.Split(segments[1], ", ")
	codes := make([]IndustryCode, 0, len(tokens))
	for _, code := range tokens {
		codes = append(codes, dir.Lookup(code))
	}
	return codes, nil
}
