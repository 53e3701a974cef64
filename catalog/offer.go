package catalog

import (
	"strings"
)

// Offer is a bookable travel package. Offers are immutable once loaded.
type Offer struct {
	Reference      string      `json:"reference"`
	ProductName    string      `json:"product_name"`
	Description    string      `json:"description"`
	Destinations   []Place     `json:"destinations"`
	DurationDays   int         `json:"duration_days"`
	DepartureCity  string      `json:"departure_city"`
	PriceURL       string      `json:"price_url"`
	ReservationURL string      `json:"reservation_url"`
	Highlights     []Highlight `json:"highlights"`
	Images         []string    `json:"images"`
	MinGroupSize   int         `json:"min_group_size"`
	MaxGroupSize   int         `json:"max_group_size"`
	OfferType      string      `json:"offer_type"`
	AvailableDates []string    `json:"available_dates"`
	Included       []string    `json:"included"`
	Excluded       []string    `json:"excluded"`
	Embedding      []float32   `json:"embedding,omitempty"`
}

type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type Highlight struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// EmbeddingText is the canonical text an offer is embedded from.
func (o *Offer) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(o.ProductName)
	b.WriteString(". ")
	for _, d := range o.Destinations {
		b.WriteString(d.City)
		b.WriteString(", ")
		b.WriteString(d.Country)
		b.WriteString(". ")
	}
	b.WriteString(o.Description)
	for _, h := range o.Highlights {
		b.WriteString(" ")
		b.WriteString(h.Title)
		b.WriteString(": ")
		b.WriteString(h.Text)
	}
	return b.String()
}

// SearchText is the lowercase haystack used by the keyword fallback.
func (o *Offer) SearchText() string {
	parts := []string{o.ProductName, o.Description, o.OfferType, o.DepartureCity}
	for _, d := range o.Destinations {
		parts = append(parts, d.City, d.Country)
	}
	for _, h := range o.Highlights {
		parts = append(parts, h.Title, h.Text)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
