package models

// Trip is a group of participants planning a trip together.
// Bills may belong to a trip; balances are computed per trip.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Chiang Mai 2026").
	Name string

	// Members is the list of participant user IDs, ordered by join time.
	Members []string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the trip.
func (t *Trip) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}
