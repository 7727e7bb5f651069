package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "multiline keeps word breaks",
			input:  "12345678 - Incorporated\n    on 1 January 2020",
			expect: "12345678 - Incorporated on 1 January 2020",
		},
		{
			name:   "non breaking space",
			input:  "Flat 1, 10 Downing Street",
			expect: "Flat 1, 10 Downing Street",
		},
		{
			name:   "surrounding whitespace",
			input:  "\n\t  Private limited company  \n",
			expect: "Private limited company",
		},
		{
			name:   "zero width runes dropped",
			input:  "SC​123456",
			expect: "SC123456",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			got := CleanText(test.input)
			if diff := cmp.Diff(test.expect, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table>
			<tr>
				<td><a class="govuk-link" href="/company/09876543">ACME
					HOLDINGS LTD</a></td>
				<td><a class="govuk-link" href="/company/01234567">OTHER PLC</a></td>
			</tr>
		</table>
	`))
	if err != nil {
		t.Fatal(err)
	}

	got := GetAnchors(context.Background(), doc.Find("a.govuk-link"))
	expect := []Anchor{
		{Name: "ACME HOLDINGS LTD", Href: "/company/09876543"},
		{Name: "OTHER PLC", Href: "/company/01234567"},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}
}
