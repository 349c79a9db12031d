package site

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"showcase/catalog"
	"showcase/contact"
	"showcase/hal"
)

func newTestHandler(t *testing.T, feed *HeroFeed) http.Handler {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return NewHandler(Deps{
		Feed:    feed,
		Catalog: cat,
		Contact: &contact.Handler{
			Mailer: &contact.LogMailer{Logger: log.New(io.Discard, "", 0)},
			Logger: log.New(io.Discard, "", 0),
		},
		SchedulingURL: "https://cal.example.com/steinmetz?a=1&b=2",
		Now:           func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLandingPage(t *testing.T) {
	feed := &HeroFeed{}
	feed.Publish(Hero{Seq: 3, Text: "<@>"})
	rec := get(t, newTestHandler(t, feed), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type=%q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Hardware for the EV Age",
		"<th>Threshold</th><th>Junction</th><th>Bandgap</th><th>Avalanche</th>",
		"225 kW",
		"Ethan Childerhose",
		`<pre id="hero-frame">&lt;@&gt;</pre>`,
		`href="https://cal.example.com/steinmetz?a=1&amp;b=2"`,
		"&gt;10,000 units",
		"&copy; 2024 Steinmetz, Inc. All rights reserved.",
		`fetch("/api/hero")`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if get(t, newTestHandler(t, feed), "/missing").Code != http.StatusNotFound {
		t.Fatalf("unknown path served")
	}
}

func TestLandingPageRequiredFields(t *testing.T) {
	body := get(t, newTestHandler(t, &HeroFeed{}), "/").Body.String()
	for _, want := range []string{
		`<input name="firstName" type="text" required>`,
		`<input name="lastName" type="text" required>`,
		`<input name="email" type="email" required>`,
		`<input name="companyName" type="text" required>`,
		`<textarea name="usageDetails" required></textarea>`,
		`<input name="jobTitle" type="text">`,
		`<input name="companyHeadquarters" type="text">`,
		`<select name="unitVolume">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("contact form missing %q", want)
		}
	}
}

func TestLandingPageWithoutScheduling(t *testing.T) {
	rec := httptest.NewRecorder()
	h := NewHandler(Deps{})
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Schedule a call") || strings.Contains(body, `id="products"`) {
		t.Fatalf("optional sections rendered without data")
	}
}

func TestHeroRoutes(t *testing.T) {
	feed := &HeroFeed{}
	h := newTestHandler(t, feed)
	if get(t, h, "/api/hero").Code != http.StatusNoContent || get(t, h, "/api/hero.png").Code != http.StatusNoContent {
		t.Fatalf("empty feed served content")
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	feed.Publish(Hero{Seq: 7, Text: "..##", Image: img, State: "animating"})

	rec := get(t, h, "/api/hero")
	if rec.Code != http.StatusOK || rec.Body.String() != "..##" || rec.Header().Get("X-Frame-Seq") != "7" {
		t.Fatalf("status=%d body=%q seq=%q", rec.Code, rec.Body, rec.Header().Get("X-Frame-Seq"))
	}

	rec = get(t, h, "/api/hero.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("png status=%d", rec.Code)
	}
	decoded, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds=%v", decoded.Bounds())
	}
}

func TestProductRoutes(t *testing.T) {
	h := newTestHandler(t, &HeroFeed{})
	rec := get(t, h, "/api/products")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(cat.Products) != 4 {
		t.Fatalf("products=%d", len(cat.Products))
	}

	rec = get(t, h, "/api/products/bandgap")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var p catalog.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.Name != "Bandgap" {
		t.Fatalf("name=%q", p.Name)
	}

	if get(t, h, "/api/products/breakdown").Code != http.StatusNotFound {
		t.Fatalf("unknown product served")
	}
}

func TestContactRoute(t *testing.T) {
	h := newTestHandler(t, &HeroFeed{})
	body := `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","companyName":"AE","usageDetails":"fleet"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":true,"data":{"id":"log-1"}}` {
		t.Fatalf("body=%s", got)
	}
	if get(t, h, "/api/contact").Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET accepted")
	}
}

func TestHealth(t *testing.T) {
	feed := &HeroFeed{}
	feed.Publish(Hero{State: "static"})
	rec := get(t, newTestHandler(t, feed), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var got health
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Viewer != "static" || got.Build.GoVersion == "" {
		t.Fatalf("health=%+v", got)
	}
}

type fakeSource struct {
	seq   uint64
	state string
}

func (f *fakeSource) AcceptedFrames() uint64 { return f.seq }
func (f *fakeSource) StateName() string      { return f.state }

type stubText struct{ s string }

func (e *stubText) Paint(fb hal.Framebuffer) { fb.ClearRGB(0xFF, 0, 0) }
func (e *stubText) Text() string             { return e.s }

func TestCapturePublishesOnChange(t *testing.T) {
	feed := &HeroFeed{}
	h := hal.New(8, 4)
	el := &stubText{s: "a"}
	h.Viewport().Attach(el)

	var src *fakeSource
	hook := capture(feed, func() frameSource {
		if src == nil {
			return nil
		}
		return src
	})

	hook(h)
	if got := feed.Latest(); got.Seq != 0 || got.State != "" || got.Image != nil {
		t.Fatalf("published without a source: %+v", got)
	}

	src = &fakeSource{state: "awaiting-asset"}
	hook(h)
	if got := feed.Latest(); got.State != "awaiting-asset" || got.Image != nil {
		t.Fatalf("state change: %+v", got)
	}

	src.seq, src.state = 1, "animating"
	hook(h)
	got := feed.Latest()
	if got.Seq != 1 || got.Text != "a" || got.Image == nil {
		t.Fatalf("frame: %+v", got)
	}
	if r := got.Image.RGBAAt(7, 3).R; r != 0xFF {
		t.Fatalf("snapshot red=%#x", r)
	}

	el.s = "b"
	hook(h)
	if feed.Latest().Text != "a" {
		t.Fatalf("published without a new frame")
	}

	src.seq = 2
	hook(h)
	if feed.Latest().Text != "b" {
		t.Fatalf("text=%q", feed.Latest().Text)
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg, err := ParseConfig(newFlagSet(), []string{"-http-addr", "127.0.0.1:0", "-asset", "missing.stl", "-hero-hz", "200"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
