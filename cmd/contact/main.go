// Command contact submits the site contact form from a terminal. Fields not
// given as flags are prompted for on stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"showcase/contact"
)

func main() {
	var f contact.Form
	var endpoint string
	var timeout time.Duration
	flag.StringVar(&endpoint, "endpoint", "http://localhost:8080/api/contact", "Contact API URL.")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout.")
	flag.StringVar(&f.FirstName, "first-name", "", "First name.")
	flag.StringVar(&f.LastName, "last-name", "", "Last name.")
	flag.StringVar(&f.Email, "email", "", "Email address.")
	flag.StringVar(&f.CompanyName, "company", "", "Company name.")
	flag.StringVar(&f.JobTitle, "job-title", "", "Job title.")
	flag.StringVar(&f.CompanyHeadquarters, "hq", "", "Company headquarters.")
	flag.StringVar(&f.UnitVolume, "unit-volume", "", "Expected volume: low|medium|high|extreme volume.")
	flag.StringVar(&f.UsageDetails, "usage", "", "How you plan to use the product.")
	flag.Parse()

	if err := prompt(os.Stdin, os.Stdout, &f); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if err := f.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res := (&contact.Client{Endpoint: endpoint}).Submit(ctx, f)
	fmt.Println(res.Message)
	if res.Status != contact.StatusSuccess {
		if res.Err != nil {
			fmt.Fprintln(os.Stderr, "error:", res.Err)
		}
		os.Exit(1)
	}
}

// prompt asks for every required field that is still empty.
func prompt(in io.Reader, out io.Writer, f *contact.Form) error {
	r := bufio.NewReader(in)
	fields := []struct {
		label string
		v     *string
	}{
		{"First name", &f.FirstName},
		{"Last name", &f.LastName},
		{"Email", &f.Email},
		{"Company", &f.CompanyName},
		{"Usage details", &f.UsageDetails},
	}
	for _, fld := range fields {
		if strings.TrimSpace(*fld.v) != "" {
			continue
		}
		fmt.Fprintf(out, "%s: ", fld.label)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return fmt.Errorf("read %s: %w", strings.ToLower(fld.label), err)
		}
		*fld.v = strings.TrimSpace(line)
	}
	return nil
}
