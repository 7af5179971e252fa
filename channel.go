package msgpack

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Channel delivers the primitive reads the decoder core needs from an
// underlying byte source: a single byte, big-endian fixed-width
// integers and floats, and bulk byte ranges. It is the decoder's only
// dependency on where the bytes actually come from (file, socket,
// in-memory buffer); see msgpack.go's package doc.
//
// Multi-byte integers and floats are big-endian. A Channel reports
// end-of-stream as a distinct failure from other I/O errors.
type Channel interface {
	ReadByte() (byte, error)
	ReadShort() (int16, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	// Read fills dst[:n] from the source and returns n, the number of
	// bytes actually filled, which may be less than len(dst). n == 0
	// without an error indicates end-of-stream.
	Read(dst []byte) (n int, err error)
	Close() error
}

// readerChannel adapts an io.Reader (optionally an io.Closer) to Channel.
type readerChannel struct {
	r   io.Reader
	buf [8]byte
}

// NewChannel wraps r as a Channel. If r does not implement io.Closer,
// Close is a no-op.
func NewChannel(r io.Reader) Channel {
	return &readerChannel{r: r}
}

func (c *readerChannel) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(c.r, c.buf[:n]); err != nil {
		return nil, eofAwareErr(err)
	}
	return c.buf[:n], nil
}

// eofAwareErr normalizes io.ReadFull's io.EOF/io.ErrUnexpectedEOF into
// a single end-of-stream signal the decoder core treats uniformly;
// any other error passes through unchanged.
func eofAwareErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (c *readerChannel) ReadByte() (byte, error) {
	b, err := c.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *readerChannel) ReadShort() (int16, error) {
	b, err := c.fill(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (c *readerChannel) ReadInt() (int32, error) {
	b, err := c.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (c *readerChannel) ReadLong() (int64, error) {
	b, err := c.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (c *readerChannel) ReadFloat() (float32, error) {
	b, err := c.fill(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func (c *readerChannel) ReadDouble() (float64, error) {
	b, err := c.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (c *readerChannel) Read(dst []byte) (int, error) {
	n, err := c.r.Read(dst)
	if err != nil && err != io.EOF {
		return n, err
	}
	return n, nil
}

func (c *readerChannel) Close() error {
	if cl, ok := c.r.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// NewDecoder returns a Decoder reading from r, using the default size
// limits. Closing the Decoder closes r if it implements io.Closer.
func NewDecoder(r io.Reader) *Decoder {
	d, err := NewDecoderLimits(NewChannel(r), DefaultLimits())
	if err != nil {
		// DefaultLimits is always valid; a failure here would be a
		// programming error in this package, not caller input.
		panic(err)
	}
	return d
}

// NewDecoderBytes returns a Decoder reading from an in-memory buffer,
// a convenience constructor for callers that already hold the full
// encoded payload.
func NewDecoderBytes(data []byte) *Decoder {
	return NewDecoder(bytes.NewReader(data))
}

// NewDecoderLimits returns a Decoder reading from ch with custom size limits.
func NewDecoderLimits(ch Channel, limits Limits) (*Decoder, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		ch:     ch,
		limits: limits,
		head:   headEmpty,
	}, nil
}
