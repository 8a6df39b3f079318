package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	// Should implement EndianEngine interface
	require.Implements(t, (*EndianEngine)(nil), engine)

	// Should be binary.LittleEndian
	require.Equal(t, binary.LittleEndian, engine)

	// Test actual endian behavior
	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	// Little endian should put LSB first
	require.Equal(t, byte(0x02), bytes[0], "Little endian should put LSB first")
	require.Equal(t, byte(0x01), bytes[1], "Little endian should put MSB second")

	// Test reading back
	readValue := engine.Uint16(bytes)
	require.Equal(t, testValue, readValue)
}

func TestGetLittleEndianEngine_AppendUint64(t *testing.T) {
	engine := GetLittleEndianEngine()

	var testUint64 uint64 = 0x0102030405060708
	buf := engine.AppendUint64(nil, testUint64)

	require.Len(t, buf, 8)
	require.Equal(t, byte(0x08), buf[0], "little endian should put LSB first")
	require.Equal(t, testUint64, engine.Uint64(buf))
}
