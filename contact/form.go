// Package contact carries the sales contact form from the browser to the
// founders' inbox.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

var ErrInvalid = errors.New("contact: invalid form")

// Form is the JSON body posted by the contact modal.
type Form struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	CompanyName         string `json:"companyName"`
	JobTitle            string `json:"jobTitle"`
	CompanyHeadquarters string `json:"companyHeadquarters"`
	UnitVolume          string `json:"unitVolume"`
	UsageDetails        string `json:"usageDetails"`
}

// UnitVolume is one choice of the expected order volume select.
type UnitVolume struct {
	Value string
	Label string
}

// UnitVolumes lists the accepted unitVolume values in display order.
var UnitVolumes = []UnitVolume{
	{Value: "low volume", Label: "<10 units"},
	{Value: "medium volume", Label: "10-1,000 units"},
	{Value: "high volume", Label: "1,000-10,000 units"},
	{Value: "extreme volume", Label: ">10,000 units"},
}

// VolumeLabel returns the display label for a unitVolume value, or the
// value itself when unknown.
func VolumeLabel(v string) string {
	for _, u := range UnitVolumes {
		if u.Value == v {
			return u.Label
		}
	}
	return v
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	for _, p := range []*string{
		&f.FirstName, &f.LastName, &f.Email, &f.CompanyName,
		&f.JobTitle, &f.CompanyHeadquarters, &f.UnitVolume, &f.UsageDetails,
	} {
		*p = strings.TrimSpace(*p)
	}
	return f
}

// FullName joins the first and last name.
func (f Form) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// ValidationError lists the offending fields by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %s", name, e.Fields[name])
	}
	return "contact: invalid form: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks required fields, the email address and the unit volume.
func (f Form) Validate() error {
	f = f.Normalize()
	fields := make(map[string]string)
	required := []struct {
		name, value string
	}{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"email", f.Email},
		{"companyName", f.CompanyName},
		{"usageDetails", f.UsageDetails},
	}
	for _, r := range required {
		if r.value == "" {
			fields[r.name] = "is required"
		}
	}
	if f.Email != "" {
		if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
			fields["email"] = "is not a valid address"
		}
	}
	if f.UnitVolume != "" && VolumeLabel(f.UnitVolume) == f.UnitVolume {
		fields["unitVolume"] = "is not a known volume"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
