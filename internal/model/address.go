package model

// Organization types assigned by the address parser.
const (
	OrgAcademic   = "Academic"
	OrgResearch   = "Research"
	OrgGovernment = "Government"
	OrgCommercial = "Commercial"
	OrgNonProfit  = "Non-profit"
)

// AddressComponents is the structured decomposition of a free-text address.
// Every field defaults to the empty string.
type AddressComponents struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"`
	Street           string `json:"street"`
	POBox            string `json:"po_box"`
	City             string `json:"city"`
	Country          string `json:"country"`
}

// Fields returns the non-empty components keyed by output field name.
func (a AddressComponents) Fields() Fields {
	f := Fields{}
	f.Set(FieldFirstName, a.FirstName)
	f.Set(FieldLastName, a.LastName)
	f.Set(FieldPhone, a.Phone)
	f.Set(FieldEmail, a.Email)
	f.Set(FieldOrganizationName, a.OrganizationName)
	f.Set(FieldOrganizationType, a.OrganizationType)
	f.Set(FieldStreet, a.Street)
	f.Set(FieldPOBox, a.POBox)
	f.Set(FieldCity, a.City)
	f.Set(FieldCountry, a.Country)
	return f
}
