package domain

import "time"

// Account is a registered storefront user. Classification plus Verified is
// the raw identity-provider metadata; capacity policy is always derived
// through ResolveTier, never stored.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	CompanyName    string    `json:"companyName,omitempty"`
	Classification string    `json:"classification"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Policy returns the account's capacity policy.
func (a Account) Policy() Policy {
	return ResolveTier(a.Classification, a.Verified)
}

// Address is a shipping/billing destination owned by an account. Business
// accounts hold a list with default flags; individual accounts keep a single
// profile address.
type Address struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"-"`
	Label           string    `json:"label,omitempty"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	Company         string    `json:"company,omitempty"`
	StreetName      string    `json:"streetName,omitempty"`
	City            string    `json:"city,omitempty"`
	PostalCode      string    `json:"postalCode,omitempty"`
	Country         string    `json:"country,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	DefaultShipping bool      `json:"defaultShipping"`
	DefaultBilling  bool      `json:"defaultBilling"`
	CreatedAt       time.Time `json:"createdAt"`
}
