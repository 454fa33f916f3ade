// Package json is the JSON codec shared by the outbound clients.
//
// It is sonic's default API. On platforms sonic cannot JIT for, sonic
// itself drops to its encoding/json compatible path.
package json

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigDefault

// Marshal encodes v.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

// NewDecoder reads a stream of JSON values from r.
func NewDecoder(r io.Reader) sonic.Decoder { return api.NewDecoder(r) }

// NewEncoder writes JSON values to w.
func NewEncoder(w io.Writer) sonic.Encoder { return api.NewEncoder(w) }
