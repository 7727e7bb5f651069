package companieshouse

import (
	"time"

	"github.com/antzucaro/matchr"
)

// IndustryCode is a single SIC classification entry. Code stays a
// string, the registry zero-pads codes and "01110" is not "1110".
type IndustryCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PreviousCompanyName records a legacy name and the period it was in
// use. The advanced-search listing does not render previous names, so
// search results always leave the field nil.
type PreviousCompanyName struct {
	Name        string    `json:"name"`
	StartPeriod time.Time `json:"start_period"`
	EndPeriod   time.Time `json:"end_period"`
}

type Company struct {
	PrimaryName             string `json:"primary_name"`
	LocalRegistrationNumber string `json:"local_registration_number"`
	RegisteredOfficeAddress string `json:"registered_office_address"`

	// Status echoes the status the search ran with, the listing
	// itself never prints one.
	Status  CompanyStatus   `json:"status"`
	Type    CompanyType     `json:"company_type"`
	SubType *CompanySubType `json:"company_sub_type"`

	IncorporationDate *time.Time `json:"incorporation_date"`
	DissolvedDate     *time.Time `json:"dissolved_date"`

	// The listing carries no filing information, these stay nil until
	// a profile-page scraper fills them.
	NextStatementDate *time.Time `json:"next_statement_date"`
	LastStatementDate *time.Time `json:"last_statement_date"`
	NextAccountsDate  *time.Time `json:"next_accounts_date"`
	LastAccountsDate  *time.Time `json:"last_accounts_date"`

	// IndustryCodes is nil when the row's SIC cell is empty, an
	// unclassified company is not one with zero classifications.
	IndustryCodes []IndustryCode        `json:"industry_codes"`
	PreviousNames []PreviousCompanyName `json:"previous_company_names"`

	// ProfileHref is the company page link from the result row,
	// relative to the registry host.
	ProfileHref string `json:"profile_href"`
}

// CompanyStatus holds the query literals the advanced-search endpoint
// accepts in its status parameter.
type CompanyStatus string

const (
	StatusActive                CompanyStatus = "active"
	StatusDissolved             CompanyStatus = "dissolved"
	StatusOpen                  CompanyStatus = "open"
	StatusClosed                CompanyStatus = "closed"
	StatusConvertedClosed       CompanyStatus = "converted-closed"
	StatusReceivership          CompanyStatus = "receivership"
	StatusLiquidation           CompanyStatus = "liquidation"
	StatusAdministration        CompanyStatus = "administration"
	StatusInsolvencyProceedings CompanyStatus = "insolvency-proceedings"
	StatusVoluntaryArrangement  CompanyStatus = "voluntary-arrangement"
)

var companyStatuses = []CompanyStatus{
	StatusActive,
	StatusDissolved,
	StatusOpen,
	StatusClosed,
	StatusConvertedClosed,
	StatusReceivership,
	StatusLiquidation,
	StatusAdministration,
	StatusInsolvencyProceedings,
	StatusVoluntaryArrangement,
}

// CompanyType holds the display strings the listing prints for a
// company's legal form, verbatim, casing quirks included.
type CompanyType string

const (
	TypeAssuranceCompany                           CompanyType = "Assurance company"
	TypeCharitableIncorporatedOrganisation         CompanyType = "Charitable incorporated organisation"
	TypeConvertedClosed                            CompanyType = "Converted / closed"
	TypeCreditUnionNorthernIreland                 CompanyType = "Credit union (Northern Ireland)"
	TypeEuropeanEconomicInterestGrouping           CompanyType = "European Economic Interest Grouping (EEIG)"
	TypeEuropeanPublicLimitedLiabilityCompany      CompanyType = "European public limited liability company (SE)"
	TypeFurtherEducationCollegeCorporation         CompanyType = "Further education or sixth form college corporation"
	TypeIndustrialAndProvidentSociety              CompanyType = "Industrial and Provident society"
	TypeInvestmentCompanyWithVariableCapital       CompanyType = "Investment company with variable capital"
	TypeLimitedLiabilityPartnership                CompanyType = "Limited liability partnership"
	TypeLimitedPartnership                         CompanyType = "Limited partnership"
	TypeNorthernIrelandCompany                     CompanyType = "Northern Ireland company"
	TypeOldPublicCompany                           CompanyType = "Old public company"
	TypeOverseasCompany                            CompanyType = "Overseas company"
	TypeOverseasEntity                             CompanyType = "Overseas entity"
	TypePrivateLimitedByGuarantee                  CompanyType = "Private limited by guarantee without share capital"
	TypePrivateLimitedCompany                      CompanyType = "Private limited company"
	TypePrivateLimitedByGuaranteeExemption         CompanyType = "Private Limited Company by guarantee without share capital, use of 'Limited' exemption"
	TypePrivateLimitedCompanyExemption             CompanyType = "Private Limited Company, use of 'Limited' exemption"
	TypePrivateUnlimitedCompany                    CompanyType = "Private unlimited company"
	TypePrivateUnlimitedWithoutShareCapital        CompanyType = "Private unlimited company without share capital"
	TypeProtectedCellCompany                       CompanyType = "Protected cell company"
	TypePublicLimitedCompany                       CompanyType = "Public limited company"
	TypeRegisteredSociety                          CompanyType = "Registered society"
	TypeRoyalCharterCompany                        CompanyType = "Royal charter company"
	TypeScottishCharitableIncorporatedOrganisation CompanyType = "Scottish charitable incorporated organisation"
	TypeScottishQualifyingPartnership              CompanyType = "Scottish qualifying partnership"
	TypeUkEstablishmentCompany                     CompanyType = "UK establishment company"
	TypeUnregisteredCompany                        CompanyType = "Unregistered company"
)

var companyTypes = []CompanyType{
	TypeAssuranceCompany,
	TypeCharitableIncorporatedOrganisation,
	TypeConvertedClosed,
	TypeCreditUnionNorthernIreland,
	TypeEuropeanEconomicInterestGrouping,
	TypeEuropeanPublicLimitedLiabilityCompany,
	TypeFurtherEducationCollegeCorporation,
	TypeIndustrialAndProvidentSociety,
	TypeInvestmentCompanyWithVariableCapital,
	TypeLimitedLiabilityPartnership,
	TypeLimitedPartnership,
	TypeNorthernIrelandCompany,
	TypeOldPublicCompany,
	TypeOverseasCompany,
	TypeOverseasEntity,
	TypePrivateLimitedByGuarantee,
	TypePrivateLimitedCompany,
	TypePrivateLimitedByGuaranteeExemption,
	TypePrivateLimitedCompanyExemption,
	TypePrivateUnlimitedCompany,
	TypePrivateUnlimitedWithoutShareCapital,
	TypeProtectedCellCompany,
	TypePublicLimitedCompany,
	TypeRegisteredSociety,
	TypeRoyalCharterCompany,
	TypeScottishCharitableIncorporatedOrganisation,
	TypeScottishQualifyingPartnership,
	TypeUkEstablishmentCompany,
	TypeUnregisteredCompany,
}

// CompanySubType holds the secondary classification display strings.
type CompanySubType string

const (
	SubTypeCommunityInterestCompany      CompanySubType = "Community Interest Company (CIC)"
	SubTypePrivateFundLimitedPartnership CompanySubType = "Private Fund Limited Partnership (PFLP)"
)

var companySubTypes = []CompanySubType{
	SubTypeCommunityInterestCompany,
	SubTypePrivateFundLimitedPartnership,
}

// closest returns the best-scoring known value for an unrecognized
// input so the error can point at the likely registry rewording.
func closest[T ~string](value string, known []T) string {
	best := ""
	bestScore := 0.0
	for _, k := range known {
		score := matchr.JaroWinkler(value, string(k), false)
		if score > bestScore {
			bestScore = score
			best = string(k)
		}
	}
	return best
}

func ParseCompanyType(text string) (CompanyType, error) {
	for _, t := range companyTypes {
		if string(t) == text {
			return t, nil
		}
	}
	return "", &UnknownEnumValueError{
		Enum:    "company type",
		Value:   text,
		Closest: closest(text, companyTypes),
	}
}

func ParseCompanySubType(text string) (CompanySubType, error) {
	for _, t := range companySubTypes {
		if string(t) == text {
			return t, nil
		}
	}
	return "", &UnknownEnumValueError{
		Enum:    "company sub type",
		Value:   text,
		Closest: closest(text, companySubTypes),
	}
}

func ParseCompanyStatus(text string) (CompanyStatus, error) {
	for _, s := range companyStatuses {
		if string(s) == text {
			return s, nil
		}
	}
	return "", &UnknownEnumValueError{
		Enum:    "company status",
		Value:   text,
		Closest: closest(text, companyStatuses),
	}
}
