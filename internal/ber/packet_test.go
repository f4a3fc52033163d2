package ber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, 65535, -65536, 1 << 40, -(1 << 40)}
	for _, n := range cases {
		encoded := EncodeInteger(n)
		decoded := DecodeInteger(encoded)
		assert.Equalf(t, n, decoded, "round trip for %d", n)

		reencoded := EncodeInteger(decoded)
		assert.Equalf(t, len(encoded), len(reencoded), "minimality for %d", n)
		if n >= 0 {
			assert.Zerof(t, encoded[0]&0x80, "high bit clear for non-negative %d", n)
		} else {
			assert.NotZerof(t, encoded[0]&0x80, "high bit set for negative %d", n)
		}
	}
}

func TestPacketRoundTrip(t *testing.T) {
	original := NewSequence(
		NewInteger(1),
		NewApp(0, NewInteger(3), NewOctetString("cn=a"), NewContextPrimitive(0, []byte("x"))),
	)

	encoded, err := original.Encode(nil)
	require.NoError(t, err)

	decoded, n, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)

	require.Len(t, decoded.Children, 2)
	assert.Equal(t, int64(1), decoded.Children[0].Int64())

	body := decoded.Children[1]
	assert.Equal(t, ClassApplication, body.Class)
	assert.Equal(t, 0, body.Tag)
	require.Len(t, body.Children, 3)
	assert.Equal(t, int64(3), body.Children[0].Int64())
	assert.Equal(t, "cn=a", body.Children[1].String())
	assert.Equal(t, "x", body.Children[2].String())
}

func TestShortFormLength(t *testing.T) {
	p := NewOctetStringBytes(make([]byte, 127))
	encoded, err := p.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, byte(127), encoded[1])
}

func TestLongFormLengthOverflowsToTwoBytes(t *testing.T) {
	p := NewOctetStringBytes(make([]byte, 300))
	encoded, err := p.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0x82), encoded[1])
}

func TestDecodeTruncatedLongFormLength(t *testing.T) {
	_, _, err := Decode([]byte{0x04, 0x80})
	assert.Error(t, err)
}

func TestDecodeDeclaredLengthOverrunsBuffer(t *testing.T) {
	_, _, err := Decode([]byte{0x04, 0x05, 0x01, 0x02})
	assert.Error(t, err)
}

func TestBooleanEmptyPayloadIsFalse(t *testing.T) {
	p := Packet{Class: ClassUniversal, Form: Primitive, Tag: TagBoolean}
	assert.False(t, p.Bool())
}
