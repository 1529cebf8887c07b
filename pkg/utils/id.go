package utils

import "github.com/google/uuid"

// GenerateID returns a new random UUID string. Used for all primary keys and
// JWT IDs so that identifiers are uniform across tables.
func GenerateID() string {
	return uuid.NewString()
}
