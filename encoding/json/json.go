// Package json routes all JSON encoding and decoding through a single import
// so the codec can be swapped without touching callers.
package json

import "encoding/json"

// Implementation is a string representation of the JSON implementation
const Implementation = "encoding/json"

var (
	// Marshal is a wrapper for json.Marshal
	Marshal = json.Marshal
	// Unmarshal is a wrapper for json.Unmarshal
	Unmarshal = json.Unmarshal
	// MarshalIndent is a wrapper for json.MarshalIndent
	MarshalIndent = json.MarshalIndent
	// NewEncoder is a wrapper for json.NewEncoder
	NewEncoder = json.NewEncoder
	// NewDecoder is a wrapper for json.NewDecoder
	NewDecoder = json.NewDecoder
	// Valid is a wrapper for json.Valid
	Valid = json.Valid
)

type (
	// RawMessage is an alias for json.RawMessage
	RawMessage = json.RawMessage
	// Number is an alias for json.Number
	Number = json.Number
	// Marshaler is an alias for json.Marshaler
	Marshaler = json.Marshaler
	// Unmarshaler is an alias for json.Unmarshaler
	Unmarshaler = json.Unmarshaler
	// SyntaxError is an alias for json.SyntaxError
	SyntaxError = json.SyntaxError
	// UnmarshalTypeError is an alias for json.UnmarshalTypeError
	UnmarshalTypeError = json.UnmarshalTypeError
)
