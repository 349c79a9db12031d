package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func validForm() Form {
	return Form{
		FirstName:           "Ada",
		LastName:            "Lovelace",
		Email:               "ada@example.com",
		CompanyName:         "Analytical Engines",
		JobTitle:            "CTO",
		CompanyHeadquarters: "London",
		UnitVolume:          "medium volume",
		UsageDetails:        "Traction inverter for a <b>race</b> car",
	}
}

type fakeMailer struct {
	got  []Email
	id   string
	fail error
}

func (m *fakeMailer) Send(_ context.Context, e Email) (string, error) {
	m.got = append(m.got, e)
	if m.fail != nil {
		return "", m.fail
	}
	return m.id, nil
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		fields []string
	}{
		{name: "valid", mutate: func(*Form) {}},
		{name: "optional fields empty", mutate: func(f *Form) { f.JobTitle, f.CompanyHeadquarters, f.UnitVolume = "", "", "" }},
		{name: "missing required", mutate: func(f *Form) { f.FirstName, f.UsageDetails = " ", "" }, fields: []string{"firstName", "usageDetails"}},
		{name: "bad email", mutate: func(f *Form) { f.Email = "ada at example" }, fields: []string{"email"}},
		{name: "named email", mutate: func(f *Form) { f.Email = "Ada <ada@example.com>" }, fields: []string{"email"}},
		{name: "unknown volume", mutate: func(f *Form) { f.UnitVolume = "lots" }, fields: []string{"unitVolume"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			err := f.Validate()
			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err=%v, want ErrInvalid", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err=%T, want *ValidationError", err)
			}
			if len(verr.Fields) != len(tc.fields) {
				t.Fatalf("fields=%v, want %v", verr.Fields, tc.fields)
			}
			for _, name := range tc.fields {
				if _, ok := verr.Fields[name]; !ok {
					t.Fatalf("fields=%v missing %q", verr.Fields, name)
				}
			}
		})
	}
}

func TestBuildEmail(t *testing.T) {
	e, err := BuildEmail(context.Background(), validForm(), "", []string{"alerts@example.com"})
	if err != nil {
		t.Fatalf("BuildEmail: %v", err)
	}
	if e.From != DefaultFrom || e.Subject != Subject || e.ReplyTo != "ada@example.com" {
		t.Fatalf("from=%q subject=%q reply-to=%q", e.From, e.Subject, e.ReplyTo)
	}
	for _, section := range []string{"Contact Details", "Company Information", "Interest Details"} {
		if !strings.Contains(e.HTML, "<h2>"+section+"</h2>") || !strings.Contains(e.Text, section) {
			t.Fatalf("section %q missing", section)
		}
	}
	for _, want := range []string{
		"<div><h1>New Contact Form Submission</h1><h2>Contact Details</h2>",
		"<p><strong>Name:</strong> Ada Lovelace</p>",
		"10-1,000 units",
		"&lt;b&gt;race&lt;/b&gt;",
	} {
		if !strings.Contains(e.HTML, want) {
			t.Fatalf("html missing %q:\n%s", want, e.HTML)
		}
	}
	if strings.Contains(e.HTML, "<b>race</b>") {
		t.Fatalf("usage details not escaped:\n%s", e.HTML)
	}
}

func TestEmailBodyHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := EmailBody(validForm()).Render(ctx, &buf); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %q after cancel", buf.String())
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestHandlerSuccess(t *testing.T) {
	m := &fakeMailer{id: "msg_123"}
	h := &Handler{Mailer: m, To: []string{"alerts@example.com"}, Logger: quietLogger()}
	body, err := json.Marshal(validForm())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := post(t, h, string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":true,"data":{"id":"msg_123"}}` {
		t.Fatalf("body=%s", got)
	}
	if len(m.got) != 1 || !slices.Equal(m.got[0].To, []string{"alerts@example.com"}) {
		t.Fatalf("sent=%+v", m.got)
	}
}

func TestHandlerFailures(t *testing.T) {
	valid, err := json.Marshal(validForm())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name   string
		body   string
		fail   error
		status int
		fields bool
	}{
		{name: "malformed json", body: "{", status: http.StatusInternalServerError},
		{name: "invalid form", body: `{"firstName":"Ada"}`, status: http.StatusBadRequest, fields: true},
		{name: "provider rejects", body: string(valid), fail: &ProviderError{Status: 422, Message: "bad"}, status: http.StatusBadRequest},
		{name: "oversized", body: `{"usageDetails":"` + strings.Repeat("x", maxBodyBytes) + `"}`, status: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &Handler{Mailer: &fakeMailer{fail: tc.fail}, Logger: quietLogger()}
			rec := post(t, h, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status=%d, want %d", rec.Code, tc.status)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode %q: %v", rec.Body, err)
			}
			if resp.Error != "Failed to send message" {
				t.Fatalf("error=%q", resp.Error)
			}
			if (len(resp.Fields) > 0) != tc.fields {
				t.Fatalf("fields=%v", resp.Fields)
			}
		})
	}
}

func TestHandlerRejectsGet(t *testing.T) {
	h := &Handler{Mailer: &fakeMailer{}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact", nil))
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("status=%d allow=%q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestHTTPMailer(t *testing.T) {
	var (
		got  Email
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Subject == "reject" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"message":"invalid from"}`)
			return
		}
		io.WriteString(w, `{"id":"abc"}`)
	}))
	defer srv.Close()

	m := HTTPMailer{Endpoint: srv.URL, APIKey: "re_test", Client: srv.Client()}
	id, err := m.Send(context.Background(), Email{From: DefaultFrom, To: []string{"a@example.com"}, Subject: Subject, HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "abc" || auth != "Bearer re_test" || !slices.Equal(got.To, []string{"a@example.com"}) {
		t.Fatalf("id=%q auth=%q to=%v", id, auth, got.To)
	}

	_, err = m.Send(context.Background(), Email{Subject: "reject"})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err=%v, want *ProviderError", err)
	}
	if perr.Status != http.StatusUnprocessableEntity || perr.Message != "invalid from" {
		t.Fatalf("provider error %+v", perr)
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := &LogMailer{Logger: log.New(&buf, "", 0)}
	id, err := m.Send(context.Background(), Email{To: []string{"a@example.com"}, Subject: Subject, Text: "hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "log-1" || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("id=%q log=%q", id, buf.String())
	}
}

func TestClientSubmit(t *testing.T) {
	m := &fakeMailer{id: "ok"}
	srv := httptest.NewServer(&Handler{Mailer: m, Logger: quietLogger()})
	defer srv.Close()
	c := &Client{Endpoint: srv.URL, HTTP: srv.Client()}

	res := c.Submit(context.Background(), validForm())
	if res.Status != StatusSuccess || res.Message != "Message sent successfully!" {
		t.Fatalf("valid submit: %+v", res)
	}

	res = c.Submit(context.Background(), Form{FirstName: "Ada"})
	if res.Status != StatusError || res.Message != "Failed to send message. Please try again." || res.Err == nil {
		t.Fatalf("invalid submit: %+v", res)
	}

	dead := &Client{Endpoint: "http://127.0.0.1:1/api/contact"}
	if res = dead.Submit(context.Background(), validForm()); res.Status != StatusError {
		t.Fatalf("dead endpoint: %+v", res)
	}
}
