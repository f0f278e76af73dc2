package serializers

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"stream-observer/src/interfaces"
)

// -----------------------------------------------------------------------------

// BinSerializer encodes objects with encoding/gob. Encode buffers are pooled
// and reused across calls; the returned slice is always a private copy.
type BinSerializer struct {
	buffers sync.Pool
}

// -----------------------------------------------------------------------------

// NewBinSerializer creates a new instance of the Gob serializer.
func NewBinSerializer() interfaces.ISerializer {
	return &BinSerializer{
		buffers: sync.Pool{
			New: func() interface{} { return new(bytes.Buffer) },
		},
	}
}

// -----------------------------------------------------------------------------

// Marshal converts the object into a Gob byte array. A fresh encoder per call
// keeps the type descriptors self-contained, so every payload can be decoded
// on its own.
func (g *BinSerializer) Marshal(obj interface{}) ([]byte, error) {
	buf := g.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer g.buffers.Put(buf)

	if err := gob.NewEncoder(buf).Encode(obj); err != nil {
		return nil, fmt.Errorf("gob marshal error: %w", err)
	}

	// The buffer goes back to the pool, so hand out a copy
	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	return data, nil
}

// -----------------------------------------------------------------------------

// Unmarshal converts a Gob byte array back into the target object.
func (g *BinSerializer) Unmarshal(data []byte, obj interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(obj); err != nil {
		return fmt.Errorf("gob unmarshal error: %w", err)
	}
	return nil
}
