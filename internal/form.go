package internal

import (
	"errors"
	"sync"
)

// ErrUnknownField is returned when a setter names a field that is not part
// of the building details form
var ErrUnknownField = errors.New("unknown building field")

// BuildingForm holds the raw building details and the visibility of the
// drawer presenting them. It performs no validation.
type BuildingForm struct {
	mu   sync.RWMutex
	raw  RawContextForm
	open bool
}

// NewBuildingForm creates a form with every field empty and the drawer closed
func NewBuildingForm() *BuildingForm {
	return &BuildingForm{raw: NewRawContextForm()}
}

// Set overwrites one field, leaving the others untouched
func (f *BuildingForm) Set(field ContextField, value string) error {
	if !field.Known() {
		return ErrUnknownField
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw[field] = value
	return nil
}

// Get returns the raw value of one field
func (f *BuildingForm) Get(field ContextField) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.raw[field]
}

// Snapshot returns a copy of the current raw values
func (f *BuildingForm) Snapshot() RawContextForm {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.raw.Clone()
}

// Open shows the drawer
func (f *BuildingForm) Open() {
	f.setOpen(true)
}

// Close hides the drawer
func (f *BuildingForm) Close() {
	f.setOpen(false)
}

// Toggle flips the drawer and returns the new state
func (f *BuildingForm) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = !f.open
	return f.open
}

// IsOpen reports whether the drawer is visible
func (f *BuildingForm) IsOpen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.open
}

func (f *BuildingForm) setOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open
}

// Known reports whether the field is spelled exactly as one of ContextFields
func (c ContextField) Known() bool {
	for _, known := range ContextFields {
		if c == known {
			return true
		}
	}
	return false
}
