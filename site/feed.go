package site

import (
	"image"
	"sync"

	"showcase/hal"
)

// Hero is one published frame of the hero viewer.
type Hero struct {
	Seq   uint64
	State string
	Text  string
	Image *image.RGBA
}

// HeroFeed holds the latest hero frame. The host loop publishes; HTTP
// handlers read.
type HeroFeed struct {
	mu   sync.RWMutex
	hero Hero
}

func (f *HeroFeed) Publish(h Hero) {
	f.mu.Lock()
	f.hero = h
	f.mu.Unlock()
}

func (f *HeroFeed) Latest() Hero {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hero
}

// frameSource is the part of a viewer session the capture hook reads.
type frameSource interface {
	AcceptedFrames() uint64
	StateName() string
}

// capture returns a headless present hook that publishes into f whenever
// src accepts a new frame or changes state.
func capture(f *HeroFeed, src func() frameSource) func(h *hal.Core) {
	var last Hero
	published := false
	return func(h *hal.Core) {
		s := src()
		if s == nil {
			return
		}
		seq, state := s.AcceptedFrames(), s.StateName()
		if published && seq == last.Seq && state == last.State {
			return
		}
		next := Hero{Seq: seq, State: state, Text: last.Text, Image: last.Image}
		if seq != last.Seq {
			h.Present()
			next.Text = ""
			for _, e := range h.Attached() {
				if te, ok := e.(hal.TextElement); ok {
					next.Text = te.Text()
				}
			}
			next.Image = h.Snapshot()
		}
		f.Publish(next)
		last, published = next, true
	}
}
