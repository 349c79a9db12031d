package contact

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

const (
	Subject     = "New Contact Form Submission - Steinmetz Website"
	DefaultFrom = "Steinmetz <founders@steinmetzmotors.com>"
)

// Email is a provider-neutral outgoing message.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type emailRow struct {
	label, value string
}

type emailSection struct {
	title string
	rows  []emailRow
}

func emailSections(f Form) []emailSection {
	return []emailSection{
		{"Contact Details", []emailRow{
			{"Name", f.FullName()},
			{"Email", f.Email},
		}},
		{"Company Information", []emailRow{
			{"Company", f.CompanyName},
			{"Job Title", f.JobTitle},
			{"Company HQ", f.CompanyHeadquarters},
			{"Unit Volume", VolumeLabel(f.UnitVolume)},
		}},
		{"Interest Details", []emailRow{
			{"Usage Details", f.UsageDetails},
		}},
	}
}

// EmailText renders the plain-text alternative.
func EmailText(f Form) string {
	var b strings.Builder
	b.WriteString("New Contact Form Submission\n")
	for _, s := range emailSections(f) {
		fmt.Fprintf(&b, "\n%s\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&b, "%s: %s\n", r.label, r.value)
		}
	}
	return b.String()
}

// BuildEmail renders the notification for f.
func BuildEmail(ctx context.Context, f Form, from string, to []string) (Email, error) {
	var html bytes.Buffer
	if err := EmailBody(f).Render(ctx, &html); err != nil {
		return Email{}, fmt.Errorf("render email: %w", err)
	}
	if from == "" {
		from = DefaultFrom
	}
	return Email{
		From:    from,
		To:      to,
		Subject: Subject,
		HTML:    html.String(),
		Text:    EmailText(f),
		ReplyTo: f.Email,
	}, nil
}
