// Package packer composes a serialization.Strategy and a
// compression.Strategy (C3): serialize-then-compress outbound, the
// inverse inbound. Grounded on
// _examples/original_source/src/packer.rs.
package packer

import (
	"github.com/TimonPost/net-sync/compression"
	"github.com/TimonPost/net-sync/serialization"
)

// Packer is the wire-format seam the transport glue calls through. It
// just hands out the two strategies it was built with; the transport
// package calls only Serialization(), and Compression() is not invoked
// by any call site.
type Packer struct {
	serialization serialization.Strategy
	compression   compression.Strategy
}

// New builds a Packer from a serialization and a compression strategy.
func New(s serialization.Strategy, c compression.Strategy) *Packer {
	return &Packer{serialization: s, compression: c}
}

// Serialization returns the configured serialization strategy.
func (p *Packer) Serialization() serialization.Strategy { return p.serialization }

// Compression returns the configured compression strategy.
func (p *Packer) Compression() compression.Strategy { return p.compression }
