// Package server exposes derivations, swatches and stored scan results over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/swatch"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

// SwatchesConfig configures the derive and swatch endpoints.
type SwatchesConfig struct {
	Scale        int
	CacheControl string
}

// Swatches serves /api/derive/{hex} and /swatch/{hex}.png.
type Swatches struct {
	cfg    SwatchesConfig
	logger *slog.Logger
}

// DeriveResponse is the JSON body of /api/derive/{hex}.
type DeriveResponse struct {
	Brand         string  `json:"brand"`
	Secondary     string  `json:"secondary"`
	Text          string  `json:"text"`
	Level         string  `json:"level"`
	Line          string  `json:"line,omitempty"`
	Ratio         float64 `json:"ratio"`
	PassesAA      bool    `json:"passes_aa"`
	PassesAALarge bool    `json:"passes_aa_large"`
}

// NewDeriveResponse converts a finding to its JSON form.
func NewDeriveResponse(f scan.Finding) DeriveResponse {
	return DeriveResponse{
		Brand:         f.Brand.Hex(),
		Secondary:     f.Secondary.Hex(),
		Text:          f.Text.Hex(),
		Level:         f.Level.String(),
		Line:          f.Line(),
		Ratio:         f.Ratio,
		PassesAA:      wcag.PassesAA(f.Ratio, false),
		PassesAALarge: wcag.PassesAA(f.Ratio, true),
	}
}

// NewSwatches creates the swatch handlers.
func NewSwatches(cfg SwatchesConfig, logger *slog.Logger) *Swatches {
	if cfg.Scale <= 0 {
		cfg.Scale = swatch.DefaultScale
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "public, max-age=86400"
	}
	return &Swatches{cfg: cfg, logger: logger}
}

// DeriveHandler returns the JSON derivation handler.
func (s *Swatches) DeriveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		brand, err := colour.ParseHex(path.Base(r.URL.Path))
		if err != nil || !strings.HasPrefix(r.URL.Path, "/api/derive/") {
			http.Error(w, "expected /api/derive/RRGGBB", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", s.cfg.CacheControl)
		if err := json.NewEncoder(w).Encode(NewDeriveResponse(scan.Evaluate(brand))); err != nil {
			s.log().Error("failed to encode derivation", "brand", brand.Hex(), "error", err)
		}
	})
}

// SwatchHandler returns the PNG swatch handler. "@2x" doubles the scale and a
// ?scale= query parameter overrides it.
func (s *Swatches) SwatchHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		brand, suffix, ok := parseSwatchPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		scale := s.cfg.Scale
		if suffix == "@2x" {
			scale *= 2
		}
		if q := r.URL.Query().Get("scale"); q != "" {
			v, err := strconv.Atoi(q)
			if err != nil {
				http.Error(w, "invalid scale", http.StatusBadRequest)
				return
			}
			scale = v
		}

		var buf bytes.Buffer
		if _, err := swatch.Encode(&buf, brand, scale); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", s.cfg.CacheControl)
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.log().Error("Failed to write response", "error", err)
		}
	})
}

func (s *Swatches) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func parseSwatchPath(requestPath string) (colour.RGB, string, bool) {
	// Expect: /swatch/156294.png or /swatch/156294@2x.png
	if !strings.HasPrefix(requestPath, "/swatch/") {
		return colour.RGB{}, "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return colour.RGB{}, "", false
	}
	name := strings.TrimSuffix(base, ".png")
	suffix := ""
	if strings.HasSuffix(name, "@2x") {
		suffix = "@2x"
		name = strings.TrimSuffix(name, "@2x")
	}

	c, err := colour.ParseHex(name)
	if err != nil {
		return colour.RGB{}, "", false
	}
	return c, suffix, true
}
