package commands

import (
	"fmt"
	"os"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/timezone"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// writeReport renders the result set as a standalone markdown document
// for sharing outside the terminal.
func writeReport(path string, query companieshouse.Query, companies []companieshouse.Company) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	md := markdown.NewMarkdown(file)
	md.H1("Companies House search")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Query", "Value"},
		Rows: [][]string{
			{"Name contains", query.Name},
			{"Number contains", query.RegistrationNumber},
			{"Status", string(query.Status)},
			{"Results", strconv.Itoa(len(companies))},
			{"Generated", timezone.Now().Format("2006-01-02 15:04")},
		},
	})
	md.PlainText("")

	md.H2("Results")
	md.PlainText("")
	rows := make([][]string, 0, len(companies))
	for _, company := range companies {
		name := fmt.Sprintf("[%s](%s%s)",
			company.PrimaryName, companieshouse.DefaultBaseUrl, company.ProfileHref)
		rows = append(rows, []string{
			name,
			company.LocalRegistrationNumber,
			string(company.Type),
			formatDate(company.IncorporationDate),
			formatDate(company.DissolvedDate),
			describeCodes(company.IndustryCodes),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Number", "Type", "Incorporated", "Dissolved", "SIC"},
		Rows:   rows,
	})

	return md.Build()
}

func describeCodes(codes []companieshouse.IndustryCode) string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code.Description == "" {
			out = append(out, code.Code)
			continue
		}
		out = append(out, fmt.Sprintf("%s %s", code.Code, code.Description))
	}
	return strings.Join(out, "; ")
}
