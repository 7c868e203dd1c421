// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestGreeting(t *testing.T) {
	g := Greeting()
	if g.Sender != SenderBot {
		t.Errorf("Sender = %q, want %q", g.Sender, SenderBot)
	}
	if g.Text != "Hi, I'm your health assistant. How can I help you today?" {
		t.Errorf("Text = %q", g.Text)
	}
	if g.IsError || g.Timestamp != nil {
		t.Error("greeting should carry no error flag or timestamp")
	}
}

func TestNewBotMessage_HasTimestamp(t *testing.T) {
	m := NewBotMessage("Hi there")
	if m.Timestamp == nil {
		t.Fatal("expected timestamp on assistant reply")
	}
	if m.IsError {
		t.Error("reply should not be flagged as error")
	}
}

func TestNewErrorMessage_Fallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", FallbackErrorText},
		{"whitespace", "  \n", FallbackErrorText},
		{"server text", "Model overloaded", "Model overloaded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewErrorMessage(tc.in)
			if m.Text != tc.want {
				t.Errorf("Text = %q, want %q", m.Text, tc.want)
			}
			if !m.IsError || m.Sender != SenderBot {
				t.Errorf("got %+v, want bot error message", m)
			}
		})
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"user ok", NewUserMessage("hello"), false},
		{"bot ok", NewBotMessage("hi"), false},
		{"error ok", NewErrorMessage(""), false},
		{"empty text", Message{Sender: SenderUser}, true},
		{"unknown sender", Message{Text: "x", Sender: "system"}, true},
		{"user with error flag", Message{Text: "x", Sender: SenderUser, IsError: true}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMessage_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hello"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"text":"hello","sender":"user"}` {
		t.Errorf("JSON = %s", data)
	}

	data, _ = json.Marshal(NewErrorMessage(""))
	if !strings.Contains(string(data), `"isError":true`) {
		t.Errorf("error message JSON missing isError: %s", data)
	}
}

func TestTail(t *testing.T) {
	var msgs []Message
	for i := 0; i < 20; i++ {
		msgs = append(msgs, NewUserMessage(strings.Repeat("x", i+1)))
	}

	got := Tail(msgs, 15)
	if len(got) != 15 {
		t.Fatalf("len = %d, want 15", len(got))
	}
	if got[0].Text != msgs[5].Text || got[14].Text != msgs[19].Text {
		t.Error("Tail did not keep the most recent messages in order")
	}

	got[0].Text = "mutated"
	if msgs[5].Text == "mutated" {
		t.Error("Tail must return a copy")
	}

	if len(Tail(msgs[:3], 15)) != 3 {
		t.Error("Tail of a short slice should return all messages")
	}
	if len(Tail(msgs, 0)) != 0 {
		t.Error("Tail(0) should be empty")
	}
}

// =============================================================================
// RECORD TESTS
// =============================================================================

func TestSOSProfile_NormalizeAndValidate(t *testing.T) {
	p := &SOSProfile{Name: "  Ada ", BloodGroup: " ab+ "}
	p.Normalize()

	if p.Name != "Ada" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.BloodGroup != "AB+" {
		t.Errorf("BloodGroup = %q, want AB+", p.BloodGroup)
	}
	if len(p.EmergencyContacts) != 1 {
		t.Errorf("expected one blank contact row, got %d", len(p.EmergencyContacts))
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	p.BloodGroup = "Z"
	if err := p.Validate(); err == nil {
		t.Error("expected invalid blood group error")
	}
}

func TestSOSProfile_RemoveContactKeepsLastRow(t *testing.T) {
	p := NewSOSProfile("u1")
	if p.RemoveContact(0) {
		t.Error("the last contact row must not be removable")
	}
	p.EmergencyContacts = append(p.EmergencyContacts, EmergencyContact{Name: "B"})
	if !p.RemoveContact(0) {
		t.Fatal("expected removal to succeed")
	}
	if len(p.EmergencyContacts) != 1 || p.EmergencyContacts[0].Name != "B" {
		t.Errorf("contacts = %+v", p.EmergencyContacts)
	}
}

func TestLatLng_MapsURL(t *testing.T) {
	u := LatLng{Lat: 12.5, Lng: -7.25}.MapsURL()
	if !strings.Contains(u, "query=12.500000%2C-7.250000") {
		t.Errorf("MapsURL() = %q", u)
	}
}
