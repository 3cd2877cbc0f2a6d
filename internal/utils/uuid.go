package utils

import "github.com/google/uuid"

// UUIDGenerator produces client-side entity ids. UUIDv7 keeps ids roughly
// time-ordered so locally created rows stay easy to eyeball in the
// database; the random fallback only matters if the clock source fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() uuid.UUID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return v7
}
