package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/product"
)

const (
	DefaultSliderGroupSize = 4
	DefaultSliderInterval  = 15 * time.Second
)

// SliderFrame is the group currently on display.
type SliderFrame struct {
	Index    int               `json:"index"`
	Groups   int               `json:"groups"`
	Products []product.Product `json:"products"`
}

// Slider rotates through the featured products in fixed-size groups.
type Slider struct {
	mu        sync.RWMutex
	groups    [][]product.Product
	index     int
	groupSize int
	interval  time.Duration
	logger    *slog.Logger
}

func NewSlider(groupSize int, interval time.Duration, logger *slog.Logger) *Slider {
	if groupSize <= 0 {
		groupSize = DefaultSliderGroupSize
	}
	if interval <= 0 {
		interval = DefaultSliderInterval
	}
	return &Slider{
		groupSize: groupSize,
		interval:  interval,
		logger:    logger.With("component", "slider"),
	}
}

// SetFeatured regroups a private copy of featured. The rotation restarts when the current group no longer exists.
func (s *Slider) SetFeatured(featured []product.Product) {
	groups := slices.Collect(slices.Chunk(slices.Clone(featured), s.groupSize))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	if s.index >= len(groups) {
		s.index = 0
	}
}

// Advance moves to the next group, wrapping after the last one.
func (s *Slider) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.groups) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.groups)
}

func (s *Slider) Current() SliderFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frame := SliderFrame{Index: s.index, Groups: len(s.groups), Products: []product.Product{}}
	if len(s.groups) > 0 {
		frame.Products = s.groups[s.index]
	}
	return frame
}

// Run advances the slider every interval until ctx is done.
func (s *Slider) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.InfoContext(ctx, "Slider started", "interval", s.interval, "group_size", s.groupSize)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Slider stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Advance()
		}
	}
}
