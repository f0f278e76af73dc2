package serializers

import (
	"fmt"

	"stream-observer/src/interfaces"
)

// -----------------------------------------------------------------------------

// ForFormat maps a configured wire format name to a serializer instance
func ForFormat(format string) (interfaces.ISerializer, error) {
	switch format {
	case "json", "":
		return NewJSONSerializer(), nil
	case "proto":
		return NewProtoSerializer(), nil
	case "bin":
		return NewBinSerializer(), nil
	default:
		return nil, fmt.Errorf("unknown serializer format '%s'", format)
	}
}
