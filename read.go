package msgpack

import "math/big"

// This file is a thin façade: each public read method allocates the
// right Acceptor, drives the dispatcher via ReadToken, and returns the
// Acceptor's captured value.

// ReadInt reads an integer value as a signed 32-bit int. Fails with a
// KindType error if the value is delivered at long width (int64, uint64,
// or a uint32 with its high bit set), even when the decoded value would
// itself fit in 32 bits (e.g. int64 -1).
func (d *Decoder) ReadInt() (int32, error) {
	a := newIntAcceptor()
	if err := d.ReadToken(a); err != nil {
		return 0, err
	}
	return a.Value, nil
}

// ReadLong reads an integer value as a signed 64-bit int, widening a
// smaller int if necessary. Fails with a KindType error on an
// unsigned-long that doesn't fit (>= 2**63).
func (d *Decoder) ReadLong() (int64, error) {
	a := newLongAcceptor()
	if err := d.ReadToken(a); err != nil {
		return 0, err
	}
	return a.Value, nil
}

// ReadBigInt reads an integer value of any width, including the
// unsigned-64 range that overflows int64.
func (d *Decoder) ReadBigInt() (*big.Int, error) {
	a := newBigIntegerAcceptor()
	if err := d.ReadToken(a); err != nil {
		return nil, err
	}
	return a.Value, nil
}

// ReadDouble reads a float or double value, widening a float32 to float64.
func (d *Decoder) ReadDouble() (float64, error) {
	a := newDoubleAcceptor()
	if err := d.ReadToken(a); err != nil {
		return 0, err
	}
	return a.Value, nil
}

// ReadBool reads a boolean value.
func (d *Decoder) ReadBool() (bool, error) {
	a := newBooleanAcceptor()
	if err := d.ReadToken(a); err != nil {
		return false, err
	}
	return a.Value, nil
}

// ReadNil reads a nil value, failing if the next value is not nil.
func (d *Decoder) ReadNil() error {
	return d.ReadToken(newNilAcceptor())
}

// ReadByteArray reads a raw value as a byte slice.
func (d *Decoder) ReadByteArray() ([]byte, error) {
	a := newByteArrayAcceptor()
	if err := d.ReadToken(a); err != nil {
		return nil, err
	}
	return a.Value, nil
}

// ReadString reads a raw value, validating it as UTF-8 and returning
// it as a string. Fails with a KindFormat error on malformed UTF-8.
func (d *Decoder) ReadString() (string, error) {
	a := newStringAcceptor()
	if err := d.ReadToken(a); err != nil {
		return "", err
	}
	return a.Value, nil
}

// ReadArrayHeader reads an array header, returning its announced
// element count. The caller is responsible for reading exactly that
// many subsequent values.
func (d *Decoder) ReadArrayHeader() (int, error) {
	a := newArrayAcceptor()
	if err := d.ReadToken(a); err != nil {
		return 0, err
	}
	return a.Size, nil
}

// ReadMapHeader reads a map header, returning its announced entry
// count. The caller is responsible for reading exactly that many
// subsequent key/value pairs.
func (d *Decoder) ReadMapHeader() (int, error) {
	a := newMapAcceptor()
	if err := d.ReadToken(a); err != nil {
		return 0, err
	}
	return a.Size, nil
}
