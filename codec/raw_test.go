package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdictpack/pstore/codec"
	"github.com/mdictpack/pstore/format"
)

func TestRawCodec_RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello world"),
		make([]byte, 1<<16),
	}

	for _, payload := range cases {
		roundTrip(t, format.EncodingRaw, 0, payload)
	}
}

func TestRawCodec_LengthMismatch(t *testing.T) {
	c, err := codec.New(format.EncodingRaw)
	require.NoError(t, err)

	_, err = c.Decode([]byte("abc"), 10)
	require.Error(t, err)
}
