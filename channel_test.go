package msgpack

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boundedReader simulates a source (like a socket) that may return
// fewer bytes than requested per call, so Channel.Read's "may fill
// less than requested" contract and the decoder's multi-read raw-body
// fill loop both get exercised.
type boundedReader struct {
	data  []byte
	pos   int
	chunk int // 0 means unbounded (serve as much as asked, like bytes.Reader)
}

func newBoundedReader(data []byte, chunk int) *boundedReader {
	return &boundedReader{data: data, chunk: chunk}
}

func (r *boundedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := len(p)
	if r.chunk > 0 && n > r.chunk {
		n = r.chunk
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func TestChannelBigEndianReads(t *testing.T) {
	ch := NewChannel(newBoundedReader([]byte{
		0x01,             // byte
		0x00, 0x02,       // short
		0x00, 0x00, 0x00, 0x03, // int
		0, 0, 0, 0, 0, 0, 0, 4, // long
	}, 0))

	b, err := ch.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)

	s, err := ch.ReadShort()
	require.NoError(t, err)
	assert.Equal(t, int16(2), s)

	i, err := ch.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(3), i)

	l, err := ch.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(4), l)
}

func TestChannelReadByteEOF(t *testing.T) {
	ch := NewChannel(newBoundedReader(nil, 0))
	_, err := ch.ReadByte()
	require.Error(t, err)
}

func TestChannelBulkReadShort(t *testing.T) {
	ch := NewChannel(newBoundedReader([]byte{1, 2, 3}, 2))
	dst := make([]byte, 3)
	total := 0
	for total < 3 {
		n, err := ch.Read(dst[total:])
		require.NoError(t, err)
		if n == 0 {
			t.Fatal("expected forward progress")
		}
		total += n
	}
	assert.Equal(t, []byte{1, 2, 3}, dst)
}

type closeTrackingReader struct {
	*boundedReader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestDecoderCloseClosesChannel(t *testing.T) {
	r := &closeTrackingReader{boundedReader: newBoundedReader([]byte{0x01}, 0)}
	d := NewDecoder(r)
	require.NoError(t, d.Close())
	assert.True(t, r.closed)
}

// flakyReader fails exactly its failOnCall'th Read invocation (1-indexed),
// serving one byte of the underlying data per successful call otherwise.
// Used to fail a raw body mid-fill and verify the decoder's scratch
// buffer survives for a retrying caller to resume from.
type flakyReader struct {
	data       []byte
	pos        int
	callCount  int
	failOnCall int
	failErr    error
}

func (r *flakyReader) Read(p []byte) (int, error) {
	r.callCount++
	if r.callCount == r.failOnCall {
		return 0, r.failErr
	}
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	if n > 1 {
		n = 1 // one byte per successful call, to also exercise multi-round fills
	}
	r.pos += n
	return n, nil
}

func TestResumableRawBodySurvivesTransientChannelError(t *testing.T) {
	errTransient := errors.New("transient read failure")
	// raw16 "foo": tag (1 Read call) + 2-byte length (2 calls) = 3 header
	// calls, then 3 more 1-byte calls to fill the body. Fail the first
	// body call (the 4th overall) and confirm a retry resumes and finishes.
	payload := []byte{0xDA, 0x00, 0x03, 'f', 'o', 'o'}
	r := &flakyReader{data: payload, failOnCall: 4, failErr: errTransient}

	d := NewDecoder(r)
	_, err := d.ReadByteArray()
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindIO, de.Kind)

	s, err := d.ReadByteArray()
	require.NoError(t, err)
	assert.Equal(t, "foo", string(s))
}
