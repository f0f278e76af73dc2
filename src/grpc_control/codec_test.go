package grpc_control_test

import (
	"testing"

	"stream-observer/src/grpc_control"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

// -----------------------------------------------------------------------------

func TestJSONCodecRegistered(t *testing.T) {
	t.Parallel()

	codec := encoding.GetCodec(grpc_control.CodecName)
	require.NotNil(t, codec, "codec registration happens in the package init")
	assert.Equal(t, "json", codec.Name())
}

// -----------------------------------------------------------------------------

func TestJSONCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := encoding.GetCodec(grpc_control.CodecName)
	require.NotNil(t, codec)

	in := &grpc_control.ControlResponse{
		Success:   true,
		Message:   "Watch 'flow-a' added successfully",
		Timestamp: 1_700_000_000,
	}

	data, err := codec.Marshal(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out := &grpc_control.ControlResponse{}
	require.NoError(t, codec.Unmarshal(data, out))
	assert.Equal(t, in, out)

	// Empty payloads decode to the zero value
	blank := &grpc_control.ControlResponse{}
	require.NoError(t, codec.Unmarshal(nil, blank))
	assert.Equal(t, &grpc_control.ControlResponse{}, blank)
}
