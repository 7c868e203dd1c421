// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hospitals resolves the user's location and formats nearby hospitals.
package hospitals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jeranaias/medai-tui/internal/backend"
	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/util"
)

// User-facing messages.
const (
	MsgNoLocation  = "Unable to get your location. Please set --lat/--lng or configure a location."
	MsgNoResults   = "No hospitals found in your area. Please try again later or check your location settings."
	MsgFetchFailed = "Failed to fetch nearby hospitals. Please try again later."
)

// ErrNoLocation is returned when neither flags nor config provide coordinates.
var ErrNoLocation = errors.New("location not available")

// Source returns hospitals near a point. *backend.Client satisfies it.
type Source interface {
	NearbyHospitals(ctx context.Context, at model.LatLng) ([]model.Hospital, error)
}

// ResolveLocation picks the flag pair when both are set, else the configured pair.
func ResolveLocation(flagLat, flagLng, cfgLat, cfgLng *float64) (model.LatLng, error) {
	switch {
	case flagLat != nil && flagLng != nil:
		return checkRange(model.LatLng{Lat: *flagLat, Lng: *flagLng})
	case flagLat != nil || flagLng != nil:
		return model.LatLng{}, fmt.Errorf("%w: both --lat and --lng are required", ErrNoLocation)
	case cfgLat != nil && cfgLng != nil:
		return checkRange(model.LatLng{Lat: *cfgLat, Lng: *cfgLng})
	}
	return model.LatLng{}, ErrNoLocation
}

func checkRange(p model.LatLng) (model.LatLng, error) {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return model.LatLng{}, fmt.Errorf("%w: coordinates out of range (%g, %g)", ErrNoLocation, p.Lat, p.Lng)
	}
	return p, nil
}

// Result is one hospital with its distance from the search origin.
type Result struct {
	Hospital   model.Hospital
	DistanceKm float64
}

// Find fetches hospitals near at. When byDistance is set results are ordered
// nearest first; otherwise the backend order is kept.
func Find(ctx context.Context, src Source, at model.LatLng, byDistance bool) ([]Result, error) {
	list, err := src.NearbyHospitals(ctx, at)
	if err != nil {
		logging.Get().Infow("nearby hospitals fail", "lat", at.Lat, "lng", at.Lng, "err", err)
		return nil, err
	}

	out := make([]Result, len(list))
	for i, h := range list {
		out[i] = Result{Hospital: h, DistanceKm: Distance(at, h.Location())}
	}
	if byDistance {
		sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	}
	return out, nil
}

// ErrorText returns the server's error text for err, else MsgFetchFailed.
func ErrorText(err error) string {
	if s := backend.ServerError(err); s != "" {
		return s
	}
	return MsgFetchFailed
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b model.LatLng) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Markdown formats one result.
func Markdown(r Result) string {
	h := r.Hospital
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", strings.TrimSpace(h.Name))
	if h.Vicinity != "" {
		fmt.Fprintf(&b, "- Address: %s\n", h.Vicinity)
	}
	if h.Rating > 0 {
		fmt.Fprintf(&b, "- Rating: %.1f (%d reviews)\n", h.Rating, h.UserRatingsTotal)
	}
	if h.OpeningHours != nil {
		status := "Closed"
		if h.OpeningHours.OpenNow {
			status = "Open now"
		}
		fmt.Fprintf(&b, "- Status: %s\n", status)
	}
	if h.PhoneNumber != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", h.PhoneNumber)
	}
	fmt.Fprintf(&b, "- Distance: %.1f km\n", r.DistanceKm)
	fmt.Fprintf(&b, "- Map: <%s>\n", h.Location().MapsURL())
	return b.String()
}

const (
	maxNameRunes    = 40
	maxAddressWidth = 48
)

// Table formats results as aligned rows, one hospital per line.
func Table(results []Result) string {
	rows := [][]string{{"NAME", "DISTANCE", "RATING", "STATUS", "ADDRESS"}}
	for _, r := range results {
		h := r.Hospital
		rating := "-"
		if h.Rating > 0 {
			rating = fmt.Sprintf("%.1f", h.Rating)
		}
		status := "-"
		if h.OpeningHours != nil {
			status = "closed"
			if h.OpeningHours.OpenNow {
				status = "open"
			}
		}
		rows = append(rows, []string{
			util.TruncateRunes(util.SingleLine(h.Name), maxNameRunes),
			fmt.Sprintf("%.1f km", r.DistanceKm),
			rating,
			status,
			util.TruncateWidth(util.SingleLine(h.Vicinity), maxAddressWidth),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], util.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		last := len(row) - 1
		for i, cell := range row {
			if i == last {
				b.WriteString(cell)
				break
			}
			b.WriteString(util.PadRight(cell, widths[i]+2))
		}
		b.WriteString("\n")
	}
	return b.String()
}
