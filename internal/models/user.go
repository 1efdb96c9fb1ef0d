package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace participant. AttestRef is the opaque identifier the
// external attestation authority verified; the core never inspects it.
type User struct {
	ID        uuid.UUID `json:"id"`
	AttestRef string    `json:"attest_ref"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}
