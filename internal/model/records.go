// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// =============================================================================
// FIRST AID
// =============================================================================

// Guide is a first-aid topic served by the backend.
type Guide struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Steps       []string `json:"steps"`
}

// =============================================================================
// HOSPITALS
// =============================================================================

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapsURL returns a link that opens the coordinate in a web map.
func (p LatLng) MapsURL() string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", strconv.FormatFloat(p.Lat, 'f', 6, 64)+","+strconv.FormatFloat(p.Lng, 'f', 6, 64))
	return "https://www.google.com/maps/search/?" + q.Encode()
}

// Hospital is one nearby-search result, in the places API shape the backend proxies.
type Hospital struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Vicinity         string        `json:"vicinity"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	PhoneNumber      string        `json:"formatted_phone_number,omitempty"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

// OpeningHours holds the open-now flag of a place.
type OpeningHours struct {
	OpenNow bool `json:"open_now"`
}

// Location returns the hospital coordinates.
func (h Hospital) Location() LatLng {
	return h.Geometry.Location
}

// =============================================================================
// SOS PROFILE
// =============================================================================

// BloodGroups lists the accepted blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// EmergencyContact is a person to notify in an emergency.
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SOSProfile is the emergency information stored for a user.
type SOSProfile struct {
	UserID            string             `json:"userId,omitempty"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email"`
	BloodGroup        string             `json:"bloodGroup"`
	MedicalHistory    string             `json:"medicalHistory"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
}

// NewSOSProfile returns an empty profile with one blank contact row.
func NewSOSProfile(userID string) *SOSProfile {
	return &SOSProfile{
		UserID:            userID,
		EmergencyContacts: []EmergencyContact{{}},
	}
}

// Normalize trims fields and guarantees at least one contact row.
func (p *SOSProfile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.BloodGroup = strings.ToUpper(strings.TrimSpace(p.BloodGroup))
	p.MedicalHistory = strings.TrimSpace(p.MedicalHistory)
	for i := range p.EmergencyContacts {
		p.EmergencyContacts[i].Name = strings.TrimSpace(p.EmergencyContacts[i].Name)
		p.EmergencyContacts[i].Phone = strings.TrimSpace(p.EmergencyContacts[i].Phone)
	}
	if len(p.EmergencyContacts) == 0 {
		p.EmergencyContacts = []EmergencyContact{{}}
	}
}

// Validate checks the blood group against BloodGroups. Empty is allowed.
func (p *SOSProfile) Validate() error {
	if p.BloodGroup == "" {
		return nil
	}
	for _, g := range BloodGroups {
		if p.BloodGroup == g {
			return nil
		}
	}
	return fmt.Errorf("invalid blood group %q, must be one of: %s", p.BloodGroup, strings.Join(BloodGroups, ", "))
}

// RemoveContact drops the contact at index i. The last remaining row is kept.
func (p *SOSProfile) RemoveContact(i int) bool {
	if len(p.EmergencyContacts) <= 1 || i < 0 || i >= len(p.EmergencyContacts) {
		return false
	}
	p.EmergencyContacts = append(p.EmergencyContacts[:i], p.EmergencyContacts[i+1:]...)
	return true
}
