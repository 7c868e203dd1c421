// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sos manages the user's emergency profile and raises SOS alerts.
package sos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/medai-tui/internal/backend"
	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
)

// User-facing messages.
const (
	MsgLoginToSave  = "Please log in to save your emergency information!"
	MsgLoginToAlert = "Please log in to use the SOS feature."
	MsgSaved        = "Emergency information saved successfully!"
	MsgSaveFailed   = "Failed to save emergency information."
	MsgAlertFailed  = "Failed to send SOS alert. Try again."
	MsgAlertSent    = "SOS alert sent."
)

var (
	// ErrNotLoggedIn is returned when no user identifier is configured.
	ErrNotLoggedIn = errors.New("no user id configured")

	// ErrInvalidProfile wraps local validation failures.
	ErrInvalidProfile = errors.New("invalid emergency information")
)

// Client is the backend surface used by Service. *backend.Client satisfies it.
type Client interface {
	SOSProfile(ctx context.Context, userID string) (*model.SOSProfile, error)
	SaveSOSProfile(ctx context.Context, p *model.SOSProfile) error
	TriggerSOS(ctx context.Context, userID string) (string, error)
}

// Service binds a backend client to one user.
type Service struct {
	client Client
	userID string
}

// New returns a service for userID. An empty id yields ErrNotLoggedIn.
func New(client Client, userID string) (*Service, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNotLoggedIn
	}
	return &Service{client: client, userID: userID}, nil
}

// UserID returns the bound user.
func (s *Service) UserID() string {
	return s.userID
}

// Load fetches the stored profile. A user with nothing stored gets a blank profile.
func (s *Service) Load(ctx context.Context) (*model.SOSProfile, error) {
	p, err := s.client.SOSProfile(ctx, s.userID)
	if errors.Is(err, backend.ErrNotFound) {
		return model.NewSOSProfile(s.userID), nil
	}
	if err != nil {
		logging.Get().Infow("load sos profile fail", "user", s.userID, "err", err)
		return nil, err
	}
	return p, nil
}

// Save validates p and stores it for the bound user.
func (s *Service) Save(ctx context.Context, p *model.SOSProfile) error {
	p.UserID = s.userID
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := s.client.SaveSOSProfile(ctx, p); err != nil {
		logging.Get().Infow("save sos profile fail", "user", s.userID, "err", err)
		return err
	}
	return nil
}

// Update loads the profile, applies patch, and saves the result.
func (s *Service) Update(ctx context.Context, patch Patch) (*model.SOSProfile, error) {
	p, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(p); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Alert raises an SOS alert and returns the text to show the user.
// The returned error is non-nil when the alert was not delivered.
func (s *Service) Alert(ctx context.Context) (string, error) {
	msg, err := s.client.TriggerSOS(ctx, s.userID)
	if err != nil {
		logging.Get().Warnw("sos alert fail", "user", s.userID, "err", err)
		if m := backend.ServerMessage(err); m != "" {
			return m, err
		}
		return MsgAlertFailed, err
	}
	logging.Get().Infow("sos alert sent", "user", s.userID)
	if strings.TrimSpace(msg) == "" {
		msg = MsgAlertSent
	}
	return msg, nil
}

// =============================================================================
// PATCH
// =============================================================================

// Patch holds optional edits to a profile. Nil fields are left unchanged.
type Patch struct {
	Name           *string
	Phone          *string
	Email          *string
	BloodGroup     *string
	MedicalHistory *string

	// AddContacts are appended, filling a single blank row first.
	AddContacts []model.EmergencyContact

	// RemoveContacts are zero-based indexes into the existing list.
	RemoveContacts []int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.BloodGroup == nil &&
		p.MedicalHistory == nil && len(p.AddContacts) == 0 && len(p.RemoveContacts) == 0
}

// Apply edits prof in place. Removals run before additions, highest index first.
func (p Patch) Apply(prof *model.SOSProfile) error {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&prof.Name, p.Name)
	set(&prof.Phone, p.Phone)
	set(&prof.Email, p.Email)
	set(&prof.BloodGroup, p.BloodGroup)
	set(&prof.MedicalHistory, p.MedicalHistory)

	idx := append([]int(nil), p.RemoveContacts...)
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	for k, i := range idx {
		if k > 0 && i == idx[k-1] {
			continue
		}
		if i < 0 || i >= len(prof.EmergencyContacts) {
			return fmt.Errorf("%w: no emergency contact #%d", ErrInvalidProfile, i+1)
		}
		if !prof.RemoveContact(i) {
			// Last row stays; blank it instead.
			prof.EmergencyContacts[i] = model.EmergencyContact{}
		}
	}

	for _, c := range p.AddContacts {
		if n := len(prof.EmergencyContacts); n == 1 && prof.EmergencyContacts[0] == (model.EmergencyContact{}) {
			prof.EmergencyContacts[0] = c
			continue
		}
		prof.EmergencyContacts = append(prof.EmergencyContacts, c)
	}
	return nil
}

// ParseContact parses "Name:Phone". The phone is the text after the last colon.
func ParseContact(s string) (model.EmergencyContact, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return model.EmergencyContact{}, fmt.Errorf("contact %q must be in the form Name:Phone", s)
	}
	c := model.EmergencyContact{
		Name:  strings.TrimSpace(s[:i]),
		Phone: strings.TrimSpace(s[i+1:]),
	}
	if c.Name == "" || c.Phone == "" {
		return model.EmergencyContact{}, fmt.Errorf("contact %q must have both a name and a phone", s)
	}
	return c, nil
}

// =============================================================================
// FORMAT
// =============================================================================

// Markdown formats a profile for display.
func Markdown(p *model.SOSProfile) string {
	orDash := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}

	var b strings.Builder
	b.WriteString("## Emergency Information\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDash(p.Name))
	fmt.Fprintf(&b, "- Phone: %s\n", orDash(p.Phone))
	fmt.Fprintf(&b, "- Email: %s\n", orDash(p.Email))
	fmt.Fprintf(&b, "- Blood group: %s\n", orDash(p.BloodGroup))
	fmt.Fprintf(&b, "- Medical history: %s\n", orDash(p.MedicalHistory))
	b.WriteString("\n### Emergency Contacts\n\n")
	for i, c := range p.EmergencyContacts {
		fmt.Fprintf(&b, "%d. %s, %s\n", i+1, orDash(c.Name), orDash(c.Phone))
	}
	return b.String()
}
