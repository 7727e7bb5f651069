package companieshouse

import (
	"registrylens-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// IndustryCodeDirectory maps SIC codes to their descriptions.
type IndustryCodeDirectory map[string]string

// Lookup resolves a code into a full IndustryCode, unknown codes get
// an empty description rather than an error since the directory page
// and the search listing drift independently.
func (d IndustryCodeDirectory) Lookup(code string) IndustryCode {
	return IndustryCode{
		Code:        code,
		Description: d[code],
	}
}

// parseIndustryCodeDirectory scans every table row on the SIC
// classification page. Rows need at least a code and a description
// cell, anything else is chrome. A few codes appear more than once,
// the first listing wins.
func parseIndustryCodeDirectory(doc *goquery.Document) IndustryCodeDirectory {
	dir := IndustryCodeDirectory{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		code := htmlutil.CleanText(cells.Eq(0).Text())
		if _, seen := dir[code]; seen {
			return
		}
		dir[code] = htmlutil.CleanText(cells.Eq(1).Text())
	})
	return dir
}
