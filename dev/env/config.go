package devenv

// RegistryTestConfig drives the opt-in live tests against the real
// registry. Create dev/.state/companieshouse.json5 to enable them.
type RegistryTestConfig struct {
	CompanyNameIncludes string `json:"company_name_includes"`
	Status              string `json:"status"`
}
