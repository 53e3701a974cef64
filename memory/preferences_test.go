package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeNeverClearsKnownFields(t *testing.T) {
	known := Preferences{
		Destination: "Japon",
		Duration:    "14 jours",
		Budget:      "confort",
	}

	merged := known.Merge(Preferences{TravelStyle: "culturel"})

	assert.Equal(t, "Japon", merged.Destination)
	assert.Equal(t, "14 jours", merged.Duration)
	assert.Equal(t, "confort", merged.Budget)
	assert.Equal(t, "culturel", merged.TravelStyle)
}

func TestMergeOverwritesWithFreshValues(t *testing.T) {
	known := Preferences{Destination: "Japon", Duration: "14 jours"}

	merged := known.Merge(Preferences{Destination: "Italie", TravelerCount: 2})

	assert.Equal(t, "Italie", merged.Destination)
	assert.Equal(t, "14 jours", merged.Duration)
	assert.Equal(t, 2, merged.TravelerCount)
}

func TestSufficient(t *testing.T) {
	cases := []struct {
		name  string
		prefs Preferences
		want  bool
	}{
		{"empty", Preferences{}, false},
		{"destination only", Preferences{Destination: "Japon"}, false},
		{"duration without destination", Preferences{Duration: "14 jours"}, false},
		{"destination and duration", Preferences{Destination: "Japon", Duration: "14 jours"}, true},
		{"destination and style", Preferences{Destination: "Japon", TravelStyle: "culturel"}, true},
		{"destination and budget", Preferences{Destination: "Japon", Budget: "luxe"}, true},
		{"destination and timing only", Preferences{Destination: "Japon", Timing: "juillet"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.prefs.Sufficient())
		})
	}
}

func TestCanonicalQuery(t *testing.T) {
	prefs := Preferences{
		Destination: "Japon",
		TravelStyle: "culturel",
		Duration:    "14 jours",
	}

	query := prefs.CanonicalQuery()
	assert.Equal(t, "voyage Japon, style culturel, durée 14 jours", query)

	assert.Empty(t, Preferences{}.CanonicalQuery())
}

func TestSummary(t *testing.T) {
	prefs := Preferences{Destination: "Japon", TravelerCount: 2}
	summary := prefs.Summary()

	assert.Contains(t, summary, "Japon")
	assert.Contains(t, summary, "2")
}
