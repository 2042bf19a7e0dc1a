package models

// Trip represents a group of people settling shared expenses in one
// base currency.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Lisbon 2026").
	Name string

	// BaseCurrency is the ISO 4217 code every balance and settlement of
	// this trip is expressed in.
	BaseCurrency string

	// Members is the list of user IDs participating in the trip.
	Members []string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}
