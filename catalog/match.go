package catalog

// Match pairs an offer with a match score and a short rationale. The slice
// order of a match list is the final presentation order.
type Match struct {
	Reference string  `json:"reference"`
	Score     float64 `json:"score"` // in [0, 1]
	Rationale string  `json:"rationale"`
	Offer     *Offer  `json:"offer,omitempty"`
}
