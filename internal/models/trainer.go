// internal/models/trainer.go
package models

// Trainer is a candidate service provider. Owned by the persistence layer;
// the matching core treats it as read-only.
type Trainer struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Specialties     []string `json:"specialties"`
	CoachingStyles  []string `json:"coachingStyles"`
	Vibe            string   `json:"vibe"`
	CommunicationStyle string `json:"communicationStyle"`
	DeliveryFormats []string `json:"deliveryFormats"`
	HourlyRate      float64  `json:"hourlyRate"`
	PackagePrices   []float64 `json:"packagePrices"`
	ExperienceYears int      `json:"experienceYears"`
	Rating          float64  `json:"rating"`
	Gender          string   `json:"gender,omitempty"`
	OffersDiscoveryCall bool `json:"offersDiscoveryCall"`

	// AcceptingNewClients is a tri-state flag: nil means unknown, which
	// never triggers the availability exclusion rule.
	AcceptingNewClients *bool `json:"acceptingNewClients,omitempty"`
}

// MinimumPrice returns the trainer's lowest package price, falling back to
// the hourly rate. ok is false when the trainer has no price data at all.
func (t *Trainer) MinimumPrice() (float64, bool) {
	if len(t.PackagePrices) > 0 {
		min := t.PackagePrices[0]
		for _, p := range t.PackagePrices[1:] {
			if p < min {
				min = p
			}
		}
		return min, true
	}
	if t.HourlyRate > 0 {
		return t.HourlyRate, true
	}
	return 0, false
}
