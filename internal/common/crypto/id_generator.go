package crypto

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() (uuid.UUID, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (uuid.UUID, error) {
	return uuid.NewRandom()
}
