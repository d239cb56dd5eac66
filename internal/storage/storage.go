// Package storage holds the types shared by the encounter persistence backends.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEncounterNotFound is returned when loading a name with no saved encounter.
var ErrEncounterNotFound = errors.New("encounter not found")

// MaxNameLength bounds saved encounter names.
const MaxNameLength = 64

// Summary describes one saved encounter.
type Summary struct {
	Name       string
	Characters int
	SavedAt    time.Time
}

// NormalizeName trims name and checks it is usable as a save key.
//
// Postcondition: Returns the trimmed name, or an error if it is empty or too long.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("encounter name must not be empty")
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("encounter name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}
