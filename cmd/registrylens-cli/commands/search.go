package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"registrylens-backend/cmd/registrylens-cli/utils"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/serviceutil"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchName *string
var searchNumber *string
var searchStatus *string
var searchJson *bool
var searchReport *string

func init() {
	searchName = searchCmd.Flags().String("name", "", "Words the company name must contain.")
	searchNumber = searchCmd.Flags().String("number", "", "Keep only results whose registration number contains this.")
	searchStatus = searchCmd.Flags().String("status", "active", "Registration status to search, e.g. active or dissolved.")
	searchJson = searchCmd.Flags().Bool("json", false, "Print the raw result records as json.")
	searchReport = searchCmd.Flags().String("report", "", "Write a markdown report to this path instead of printing a table.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search --name <words> [--number <fragment>] [--status <status>]",
	Short: "Runs an advanced search against the register and prints the results.",
	Run: func(cmd *cobra.Command, args []string) {
		status, err := companieshouse.ParseCompanyStatus(*searchStatus)
		if err != nil {
			serviceutil.Fatal("unusable --status value", err)
		}
		query := companieshouse.Query{
			Name:               *searchName,
			RegistrationNumber: *searchNumber,
			Status:             status,
		}

		client := newRegistryClient()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		companies, err := client.SearchCompanies(ctx, query)
		if err != nil {
			serviceutil.Fatal("search failed", err)
		}

		switch {
		case *searchJson:
			out, err := json.MarshalIndent(companies, "", "  ")
			if err != nil {
				serviceutil.Fatal("failed to marshal results", err)
			}
			fmt.Println(string(out))
		case *searchReport != "":
			err := writeReport(*searchReport, query, companies)
			if err != nil {
				serviceutil.Fatal("failed to write report", err)
			}
		default:
			renderCompanies(companies)
		}
	},
}

func renderCompanies(companies []companieshouse.Company) {
	t := utils.NewTable()
	t.AppendHeader(table.Row{"Name", "Number", "Type", "Incorporated", "Address", "SIC"})
	for _, company := range companies {
		t.AppendRow(table.Row{
			company.PrimaryName,
			company.LocalRegistrationNumber,
			string(company.Type),
			formatDate(company.IncorporationDate),
			company.RegisteredOfficeAddress,
			formatCodes(company.IndustryCodes),
		})
	}
	t.Render()
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format("2 January 2006")
}

func formatCodes(codes []companieshouse.IndustryCode) string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, code.Code)
	}
	return strings.Join(out, ", ")
}
