package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntAcceptorRejectsByteArray(t *testing.T) {
	a := newIntAcceptor()
	err := a.AcceptByteArray([]byte("x"))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindType, de.Kind)
}

func TestLongAcceptorWidensInt(t *testing.T) {
	a := newLongAcceptor()
	require.NoError(t, a.AcceptInt(42))
	assert.Equal(t, int64(42), a.Value)
}

func TestLongAcceptorRejectsUnsignedLong(t *testing.T) {
	a := newLongAcceptor()
	err := a.AcceptUnsignedLong(1 << 63)
	require.Error(t, err)
}

func TestBigIntegerAcceptorAcceptsAllThreeWidths(t *testing.T) {
	a := newBigIntegerAcceptor()
	require.NoError(t, a.AcceptInt(7))
	assert.Equal(t, int64(7), a.Value.Int64())

	require.NoError(t, a.AcceptLong(-9))
	assert.Equal(t, int64(-9), a.Value.Int64())

	require.NoError(t, a.AcceptUnsignedLong(1<<63))
	assert.Equal(t, uint64(1<<63), a.Value.Uint64())
}

func TestDoubleAcceptorWidensFloat(t *testing.T) {
	a := newDoubleAcceptor()
	require.NoError(t, a.AcceptFloat(1.5))
	assert.Equal(t, 1.5, a.Value)
}

func TestBooleanAcceptorRejectsNil(t *testing.T) {
	a := newBooleanAcceptor()
	err := a.AcceptNil()
	require.Error(t, err)
}

func TestByteArrayAcceptorEmpty(t *testing.T) {
	a := newByteArrayAcceptor()
	require.NoError(t, a.AcceptEmptyByteArray())
	assert.Equal(t, []byte{}, a.Value)
}

func TestArrayAcceptorRejectsMapHeader(t *testing.T) {
	a := newArrayAcceptor()
	err := a.AcceptMapHeader(3)
	require.Error(t, err)
}

func TestMapAcceptorCapturesSize(t *testing.T) {
	a := newMapAcceptor()
	require.NoError(t, a.AcceptMapHeader(5))
	assert.Equal(t, 5, a.Size)
}
