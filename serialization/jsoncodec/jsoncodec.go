// Package jsoncodec implements serialization.Strategy with encoding/json.
//
// Grounded on the teacher's message envelope serialization
// (_examples/adred-codev-ws_poc/ws/internal/single/messaging/message.go,
// which marshals its MessageEnvelope with plain encoding/json). No
// ecosystem codec in the retrieved pack offers a field-path-indexed
// binary format standing in for the original's bincode; see DESIGN.md
// for why encoding/json was kept instead of introducing an unrelated
// third-party codec.
package jsoncodec

import (
	"encoding/json"

	"github.com/TimonPost/net-sync/syncerr"
)

// Codec is the stdlib-JSON serialization.Strategy.
type Codec struct{}

// New constructs a Codec.
func New() *Codec { return &Codec{} }

// Serialize encodes v as JSON.
func (Codec) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, syncerr.NewSerializationError(err)
	}
	return data, nil
}

// Deserialize decodes data into out.
func (Codec) Deserialize(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return syncerr.NewSerializationError(err)
	}
	return nil
}
