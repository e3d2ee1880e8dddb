package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ID identifies a record. The API hands out integers for core records and
// strings for plugin records, so both decode into the same canonical string.
type ID string

// ErrInvalidID is returned when an id is null, empty or not a string or number
var ErrInvalidID = errors.New("invalid id")

// UnmarshalJSON accepts a non-empty JSON string or a number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: missing value", ErrInvalidID)
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w %s: %v", ErrInvalidID, data, err)
		}
		if s == "" {
			return fmt.Errorf("%w: empty string", ErrInvalidID)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidID, data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers so the backend sees the
// type it issued. Anything else ("007", "+5", "abc") stays a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// PluginRecord is the remote budgeting-service record a core record is linked to
type PluginRecord struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// LinkData is present on a record when it is linked to a plugin record
type LinkData struct {
	ID           ID           `json:"id"`
	PluginRecord PluginRecord `json:"plugin_record"`
}

// Record is a flat, parent-referencing entity such as a category or payee
type Record struct {
	ID       ID        `json:"id"`
	Name     string    `json:"name"`
	Parent   *ID       `json:"parent"`
	LinkData *LinkData `json:"link_data,omitempty"`
}

// IsRoot returns true if the record has no parent reference at all.
// Records whose parent does not resolve are also rendered as roots, but that
// can only be decided against the full record set.
func (r *Record) IsRoot() bool {
	return r.Parent == nil
}

// Linked returns true if the record is associated with a plugin record
func (r *Record) Linked() bool {
	return r.LinkData != nil && r.LinkData.ID != ""
}

// ParentID returns the parent id, or the empty ID for roots
func (r *Record) ParentID() ID {
	if r.Parent == nil {
		return ""
	}
	return *r.Parent
}

// Ref returns a pointer to id, handy for building Record.Parent values
func Ref(id ID) *ID {
	return &id
}
