// Package serialization defines the pluggable serialization capability
// (C2) the core composes into a Packer.
package serialization

// Strategy serializes and deserializes arbitrary message values. The
// concrete strategy (jsoncodec, or any future binary codec) owns wire
// format decisions; the core only calls through this interface.
type Strategy interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, out any) error
}
