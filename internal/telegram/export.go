// Package telegram decodes the contact section of a Telegram Desktop data export.
package telegram

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// ErrInvalidStructure is returned when the document has no contacts.list array.
var ErrInvalidStructure = errors.New("invalid Telegram JSON structure: missing contacts.list")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Contact is one entry of contacts.list. Absent or null fields decode to "".
type Contact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// Parse is Decode for an in-memory document.
func Parse(data []byte) ([]Contact, error) {
	if !json.Valid(data) {
		return nil, errors.New("failed to parse export: malformed JSON")
	}

	list := json.Get(data, "contacts", "list")
	if list.ValueType() != jsoniter.ArrayValue {
		return nil, ErrInvalidStructure
	}

	contacts := make([]Contact, 0, list.Size())
	if err := json.UnmarshalFromString(list.ToString(), &contacts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	return contacts, nil
}

// Decode reads a whole export from r and returns its contacts in document order.
// It fails with ErrInvalidStructure when contacts.list is absent or not an array.
func Decode(r io.Reader) ([]Contact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return Parse(data)
}
