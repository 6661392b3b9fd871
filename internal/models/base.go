package models

import "github.com/google/uuid"

// newID returns a document id when the caller did not assign one.
func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
