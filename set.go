// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"encoding/json"
)

// Set is an ordered JSON Web Key Set. A Set owns deep copies of its keys and
// only ever hands out copies.
//
// Key identifiers are not required to be unique. Find returns the first key
// with a given kid, so insertion order matters.
//
// A Set has no internal locking. It may be shared once construction is done,
// but concurrent use of Add requires external synchronization.
type Set struct {
	keys []Key
}

// NewSet creates a Set with the given keys, in order. Each key is validated.
func NewSet(keys ...Key) (*Set, error) {
	s := &Set{
		keys: make([]Key, 0, len(keys)),
	}

	for i, k := range keys {
		if err := s.Add(k); err != nil {
			return nil, &EntryError{Index: i, Err: err}
		}
	}

	return s, nil
}

// Add validates k and appends a copy of it to this set.
func (s *Set) Add(k Key) error {
	if err := Validate(k); err != nil {
		return err
	}

	s.keys = append(s.keys, k.Clone())
	return nil
}

// Len returns the number of keys in this set.
func (s *Set) Len() int {
	return len(s.keys)
}

// Find returns a copy of the first key with the given kid.
func (s *Set) Find(kid string) (Key, bool) {
	for _, k := range s.keys {
		if k.KID == kid {
			return k.Clone(), true
		}
	}

	return Key{}, false
}

// Keys returns copies of all the keys in this set, in insertion order.
func (s *Set) Keys() []Key {
	keys := make([]Key, len(s.keys))
	for i, k := range s.keys {
		keys[i] = k.Clone()
	}

	return keys
}

// Public returns a new Set containing the public portion of each key.
func (s *Set) Public() *Set {
	p := &Set{
		keys: make([]Key, len(s.keys)),
	}

	for i, k := range s.keys {
		p.keys[i] = k.Public()
	}

	return p
}

// wireSet is the JWKS JSON object.
type wireSet struct {
	Keys []Key `json:"keys"`
}

// MarshalJSON writes this set as a JWKS object. An empty set is written
// with an empty keys array.
func (s *Set) MarshalJSON() ([]byte, error) {
	ws := wireSet{
		Keys: s.keys,
	}

	if ws.Keys == nil {
		ws.Keys = []Key{}
	}

	return json.Marshal(ws)
}

// UnmarshalJSON parses a JWKS object using ParseSet's default, strict policy.
func (s *Set) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSet(data)
	if err == nil {
		*s = *parsed
	}

	return err
}

// SetOption tailors how ParseSet handles a key set.
type SetOption func(*setParser)

type setParser struct {
	skip func(int, error)
}

// SkipInvalid opts into best-effort parsing. Each invalid entry is passed to
// the callback along with its index and is left out of the resulting set.
// Without this option, any invalid entry fails the entire parse.
func SkipInvalid(callback func(index int, err error)) SetOption {
	return func(sp *setParser) {
		sp.skip = callback
	}
}

// ParseSet decodes and validates a JWKS object. Unknown top-level members are
// ignored. By default, a single invalid entry fails the whole set.
func ParseSet(data []byte, options ...SetOption) (*Set, error) {
	var sp setParser
	for _, o := range options {
		o(&sp)
	}

	m, err := newMembers(data)
	if err != nil {
		return nil, err
	}

	raw, present := m[memberKeys]
	switch {
	case !present:
		return nil, newFieldError(memberKeys, ErrMissingRequiredField, "")

	case !hasJSONType(raw, '['):
		return nil, newFieldError(memberKeys, ErrTypeMismatch, "expected an array of keys")
	}

	var entries []json.RawMessage
	if err = json.Unmarshal(raw, &entries); err != nil {
		return nil, &FieldError{Field: memberKeys, Kind: ErrTypeMismatch, Err: err}
	}

	s := &Set{
		keys: make([]Key, 0, len(entries)),
	}

	for i, entry := range entries {
		k, err := ParseKey(entry)
		switch {
		case err == nil:
			s.keys = append(s.keys, k)

		case sp.skip != nil:
			sp.skip(i, err)

		default:
			return nil, &EntryError{Index: i, Err: err}
		}
	}

	return s, nil
}
