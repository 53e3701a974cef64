package memory

import (
	"fmt"
	"strings"
)

// Preferences is the structured record extracted from the user's messages.
// Any subset of fields may be absent (empty string / zero).
type Preferences struct {
	Destination   string `json:"destination,omitempty"`
	Duration      string `json:"duration,omitempty"` // e.g. "14 jours"
	Budget        string `json:"budget,omitempty"`   // tier: "économique", "confort", "luxe"
	TravelStyle   string `json:"travel_style,omitempty"`
	TravelerCount int    `json:"traveler_count,omitempty"`
	Timing        string `json:"timing,omitempty"` // e.g. "juillet", "été 2026"
}

// Merge overlays the non-empty fields of patch onto p. Fields absent from
// the patch are never cleared; an explicit retraction goes through Clear on
// the store instead.
func (p Preferences) Merge(patch Preferences) Preferences {
	if patch.Destination != "" {
		p.Destination = patch.Destination
	}
	if patch.Duration != "" {
		p.Duration = patch.Duration
	}
	if patch.Budget != "" {
		p.Budget = patch.Budget
	}
	if patch.TravelStyle != "" {
		p.TravelStyle = patch.TravelStyle
	}
	if patch.TravelerCount > 0 {
		p.TravelerCount = patch.TravelerCount
	}
	if patch.Timing != "" {
		p.Timing = patch.Timing
	}
	return p
}

// IsEmpty reports whether no field is known.
func (p Preferences) IsEmpty() bool {
	return p == Preferences{}
}

// Sufficient reports whether enough is known to retrieve and rank offers:
// a destination plus at least one of duration, style or budget.
func (p Preferences) Sufficient() bool {
	if p.Destination == "" {
		return false
	}
	return p.Duration != "" || p.TravelStyle != "" || p.Budget != ""
}

// CanonicalQuery renders the preferences as the text a query embedding is
// built from.
func (p Preferences) CanonicalQuery() string {
	var parts []string
	if p.Destination != "" {
		parts = append(parts, "voyage "+p.Destination)
	}
	if p.TravelStyle != "" {
		parts = append(parts, "style "+p.TravelStyle)
	}
	if p.Duration != "" {
		parts = append(parts, "durée "+p.Duration)
	}
	if p.Budget != "" {
		parts = append(parts, "budget "+p.Budget)
	}
	if p.Timing != "" {
		parts = append(parts, "période "+p.Timing)
	}
	if p.TravelerCount > 0 {
		parts = append(parts, fmt.Sprintf("%d voyageurs", p.TravelerCount))
	}
	return strings.Join(parts, ", ")
}

// Summary renders a short human-readable recap for confirmation prompts.
func (p Preferences) Summary() string {
	var parts []string
	if p.Destination != "" {
		parts = append(parts, "destination : "+p.Destination)
	}
	if p.Duration != "" {
		parts = append(parts, "durée : "+p.Duration)
	}
	if p.Budget != "" {
		parts = append(parts, "budget : "+p.Budget)
	}
	if p.TravelStyle != "" {
		parts = append(parts, "style : "+p.TravelStyle)
	}
	if p.TravelerCount > 0 {
		parts = append(parts, fmt.Sprintf("voyageurs : %d", p.TravelerCount))
	}
	if p.Timing != "" {
		parts = append(parts, "période : "+p.Timing)
	}
	return strings.Join(parts, " · ")
}
