// Package site serves the marketing site: the landing page, the live hero
// viewer feed, the product catalog and the contact endpoint.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"showcase/asset"
	"showcase/catalog"
	"showcase/contact"
	"showcase/hal"
	"showcase/internal/buildinfo"
	"showcase/viewer"
)

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Feed          *HeroFeed
	Catalog       *catalog.Catalog
	Contact       http.Handler
	SchedulingURL string
	Now           func() time.Time
}

// NewHandler builds the site routes.
func NewHandler(d Deps) http.Handler {
	if d.Feed == nil {
		d.Feed = &HeroFeed{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		page := Page(PageData{
			Hero:          d.Feed.Latest().Text,
			Catalog:       d.Catalog,
			Team:          team,
			SchedulingURL: d.SchedulingURL,
			Year:          d.Now().Year(),
		})
		templ.Handler(page).ServeHTTP(w, r)
	})
	mux.HandleFunc("GET /api/hero", func(w http.ResponseWriter, r *http.Request) {
		h := d.Feed.Latest()
		if h.Seq == 0 || h.Text == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Frame-Seq", strconv.FormatUint(h.Seq, 10))
		w.Write([]byte(h.Text))
	})
	mux.HandleFunc("GET /api/hero.png", func(w http.ResponseWriter, r *http.Request) {
		h := d.Feed.Latest()
		if h.Seq == 0 || h.Image == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Frame-Seq", strconv.FormatUint(h.Seq, 10))
		if err := png.Encode(w, h.Image); err != nil {
			log.Printf("encode hero png: %v", err)
		}
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		if d.Catalog == nil {
			http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, d.Catalog)
	})
	mux.HandleFunc("GET /api/products/{name}", func(w http.ResponseWriter, r *http.Request) {
		if d.Catalog == nil {
			http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
			return
		}
		p, err := d.Catalog.Find(r.PathValue("name"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	if d.Contact != nil {
		mux.Handle("/api/contact", d.Contact)
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health{
			Status: "ok",
			Build:  buildinfo.Current(),
			Viewer: d.Feed.Latest().State,
		})
	})
	return mux
}

type health struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
	Viewer string         `json:"viewer,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NewMailer picks the HTTP mailer when an API key is configured and the
// logging mailer otherwise.
func NewMailer(cfg Config, logger *log.Logger) contact.Mailer {
	if cfg.ResendAPIKey == "" {
		return &contact.LogMailer{Logger: logger}
	}
	return contact.HTTPMailer{APIKey: cfg.ResendAPIKey}
}

// Run serves the site until ctx ends. The hero viewer runs on a headless
// host beside the HTTP server; either failing stops both.
func Run(ctx context.Context, cfg Config) error {
	logger := log.New(log.Writer(), "site: ", log.LstdFlags)

	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	feed := &HeroFeed{}
	handler := NewHandler(Deps{
		Feed:    feed,
		Catalog: cat,
		Contact: &contact.Handler{
			Mailer: NewMailer(cfg, logger),
			From:   cfg.MailFrom,
			To:     cfg.AlertEmail,
			Logger: logger,
		},
		SchedulingURL: cfg.SchedulingURL,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := runHero(gctx, cfg, feed, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		return listenAndServe(gctx, srv, cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func runHero(ctx context.Context, cfg Config, feed *HeroFeed, logger *log.Logger) error {
	var session *viewer.Session
	hc := hal.HeadlessConfig{
		Hz:     cfg.HeroHz,
		Width:  cfg.HeroWidth,
		Height: cfg.HeroHeight,
		Present: capture(feed, func() frameSource {
			if session == nil {
				return nil
			}
			return sessionSource{session}
		}),
	}
	return hal.RunHeadless(ctx, hc, func(h *hal.Core) (func() error, error) {
		h.SetLogger(lineLogger{logger})
		session = viewer.New(h, asset.NewDefaultLoader(),
			viewer.WithStylized(cfg.Stylized),
			viewer.WithAssetPath(cfg.AssetPath),
		)
		if err := session.Start(); err != nil {
			return nil, fmt.Errorf("start hero viewer: %w", err)
		}
		return session.Stop, nil
	})
}

func listenAndServe(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := srv.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

type sessionSource struct{ s *viewer.Session }

func (s sessionSource) AcceptedFrames() uint64 { return s.s.AcceptedFrames() }
func (s sessionSource) StateName() string      { return s.s.State().String() }

// lineLogger adapts a standard logger to the host line logger.
type lineLogger struct{ l *log.Logger }

func (l lineLogger) WriteLineString(s string) { l.l.Print(s) }
func (l lineLogger) WriteLineBytes(b []byte)  { l.l.Print(string(b)) }
