package models

import "github.com/google/uuid"

// CompanyProfile carries the issuer identity embedded in every invoice.
// Logo is either empty or a base64 data URI produced by the logo intake.
type CompanyProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// NewCompanyProfile returns a blank profile with a fresh id.
func NewCompanyProfile() CompanyProfile {
	return CompanyProfile{ID: uuid.NewString()}
}

// CompanyProfilePatch is a partial update. Nil fields are left untouched so
// "not sent" and "set to empty" stay distinguishable.
type CompanyProfilePatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Website *string `json:"website,omitempty"`
	Address *string `json:"address,omitempty"`
	Logo    *string `json:"logo,omitempty"`
}

// Apply merges the patch into the profile.
func (p *CompanyProfile) Apply(patch CompanyProfilePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Website != nil {
		p.Website = *patch.Website
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Logo != nil {
		p.Logo = *patch.Logo
	}
}
