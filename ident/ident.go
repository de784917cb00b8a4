// Package ident issues and tracks persistent entity identifiers: UUID v4
// strings that survive serialization, so references between saved scenes stay
// valid across sessions regardless of the transient in-memory entity ids.
package ident

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

var (
	ErrInvalidID       = eris.New("persistent id is not a valid UUID v4")
	ErrAlreadyReserved = eris.New("persistent id already reserved")
	ErrExhausted       = eris.New("persistent id generation exhausted")
)

// maxGenerateAttempts bounds GenerateUnique. With a 122-bit random id space
// the bound is unreachable in practice; it exists so a broken random source
// fails loudly instead of spinning forever.
const maxGenerateAttempts = 100

// Service tracks which persistent ids are reserved by live entities. An id
// is unique among currently reserved ids and is never handed out twice while
// reserved.
type Service struct {
	reserved map[string]struct{}
}

func NewService() *Service {
	return &Service{reserved: make(map[string]struct{})}
}

// Validate reports whether id is a well-formed UUID v4.
func Validate(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return eris.Wrap(ErrInvalidID, fmt.Sprintf("%q: %s", id, err))
	}
	if parsed.Version() != 4 {
		return eris.Wrap(ErrInvalidID, fmt.Sprintf("%q is a version %d UUID, want version 4", id, parsed.Version()))
	}
	return nil
}

// Generate returns a cryptographically random UUID v4. The result is not
// reserved; callers that need the id held must Reserve it.
func (s *Service) Generate() string {
	return uuid.NewString()
}

// Reserve marks id as taken. Fails with ErrInvalidID for malformed ids and
// ErrAlreadyReserved when the id is already held.
func (s *Service) Reserve(id string) error {
	if err := Validate(id); err != nil {
		return err
	}
	if _, ok := s.reserved[id]; ok {
		return eris.Wrap(ErrAlreadyReserved, id)
	}
	s.reserved[id] = struct{}{}
	return nil
}

// IsReserved reports whether id is currently held.
func (s *Service) IsReserved(id string) bool {
	_, ok := s.reserved[id]
	return ok
}

// Release un-reserves id. Releasing an id that is not reserved is a no-op.
func (s *Service) Release(id string) {
	delete(s.reserved, id)
}

// GenerateUnique generates an id that is not currently reserved and reserves
// it. Bounded at maxGenerateAttempts; beyond that it fails with ErrExhausted.
func (s *Service) GenerateUnique() (string, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		id := s.Generate()
		if s.IsReserved(id) {
			continue
		}
		s.reserved[id] = struct{}{}
		return id, nil
	}
	return "", eris.Wrap(ErrExhausted, fmt.Sprintf("gave up after %d attempts", maxGenerateAttempts))
}

// ReservedCount returns the number of reserved ids.
func (s *Service) ReservedCount() int {
	return len(s.reserved)
}

// Clear drops every reservation. Used when a scene is disposed.
func (s *Service) Clear() {
	s.reserved = make(map[string]struct{})
}
