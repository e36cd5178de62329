package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RunID identifies one export run. Its string form names the run directory.
type RunID ID

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID { return RunID(NewID()) }

func (id RunID) String() string { return ID(id).String() }

// Short returns the last twelve hex digits. The leading digits of a v7
// UUID are its timestamp, so only the tail tells runs apart.
func (id RunID) Short() string {
	s := strings.ReplaceAll(id.String(), "-", "")
	if len(s) > 12 {
		return s[len(s)-12:]
	}
	return s
}
