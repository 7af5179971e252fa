package msgpack

import (
	"math/big"
	"unicode/utf8"
)

// Acceptor is a polymorphic sink parameterizing the token dispatcher:
// it receives exactly one semantic event per decoded value and
// captures it in the typed form a caller's read method wants. Each
// concrete Acceptor rejects token kinds it doesn't handle with a
// KindType error, except where integer/float widening is explicitly
// allowed (see the doc comment on each concrete type below).
type Acceptor interface {
	AcceptInt(v int32) error
	AcceptLong(v int64) error
	// AcceptUnsignedLong carries the raw 64-bit pattern of a uint64
	// whose signed interpretation is negative, i.e. a value >= 2**63
	// that does not fit in an int64.
	AcceptUnsignedLong(v uint64) error
	AcceptFloat(v float32) error
	AcceptDouble(v float64) error
	AcceptBoolean(v bool) error
	AcceptNil() error
	AcceptByteArray(b []byte) error
	AcceptEmptyByteArray() error
	AcceptArrayHeader(size int) error
	AcceptMapHeader(size int) error
}

// rejectAcceptor implements every Acceptor method as a KindType
// failure; concrete acceptors embed it and override only the methods
// for the kinds they accept.
type rejectAcceptor struct {
	// want names the typed read this acceptor backs, e.g. "readInt",
	// for type-mismatch error messages.
	want string
}

func (r rejectAcceptor) reject(got string) error {
	return &DecodeError{Kind: KindType, Msg: r.want + ": cannot accept " + got}
}

func (r rejectAcceptor) AcceptInt(int32) error           { return r.reject("int") }
func (r rejectAcceptor) AcceptLong(int64) error          { return r.reject("long") }
func (r rejectAcceptor) AcceptUnsignedLong(uint64) error { return r.reject("unsigned long") }
func (r rejectAcceptor) AcceptFloat(float32) error       { return r.reject("float") }
func (r rejectAcceptor) AcceptDouble(float64) error      { return r.reject("double") }
func (r rejectAcceptor) AcceptBoolean(bool) error        { return r.reject("boolean") }
func (r rejectAcceptor) AcceptNil() error                { return r.reject("nil") }
func (r rejectAcceptor) AcceptByteArray([]byte) error    { return r.reject("byte array") }
func (r rejectAcceptor) AcceptEmptyByteArray() error     { return r.reject("byte array") }
func (r rejectAcceptor) AcceptArrayHeader(int) error     { return r.reject("array header") }
func (r rejectAcceptor) AcceptMapHeader(int) error       { return r.reject("map header") }

// IntAcceptor backs ReadInt. Accepts only the int-width wire formats;
// a long-width value is always a type mismatch, regardless of whether
// the decoded bits would themselves fit in 32 bits.
type IntAcceptor struct {
	rejectAcceptor
	Value int32
}

func newIntAcceptor() *IntAcceptor { return &IntAcceptor{rejectAcceptor: rejectAcceptor{"readInt"}} }

func (a *IntAcceptor) AcceptInt(v int32) error {
	a.Value = v
	return nil
}

// AcceptLong always rejects: a value wide enough to need the long-width
// wire format is a type mismatch for readInt, even when the decoded bits
// would themselves fit in an int32 (e.g. int64 -1).
func (a *IntAcceptor) AcceptLong(v int64) error {
	return a.reject("long-width value")
}

// LongAcceptor backs ReadLong. Accepts int (widened) and long;
// rejects unsigned-long since that exceeds the signed 64-bit range.
type LongAcceptor struct {
	rejectAcceptor
	Value int64
}

func newLongAcceptor() *LongAcceptor { return &LongAcceptor{rejectAcceptor: rejectAcceptor{"readLong"}} }

func (a *LongAcceptor) AcceptInt(v int32) error {
	a.Value = int64(v)
	return nil
}

func (a *LongAcceptor) AcceptLong(v int64) error {
	a.Value = v
	return nil
}

// BigIntegerAcceptor backs ReadBigInt. Accepts int, long, and
// unsigned-long, the last represented as an unsigned 64-bit big.Int.
type BigIntegerAcceptor struct {
	rejectAcceptor
	Value *big.Int
}

func newBigIntegerAcceptor() *BigIntegerAcceptor {
	return &BigIntegerAcceptor{rejectAcceptor: rejectAcceptor{"readBigInt"}}
}

func (a *BigIntegerAcceptor) AcceptInt(v int32) error {
	a.Value = big.NewInt(int64(v))
	return nil
}

func (a *BigIntegerAcceptor) AcceptLong(v int64) error {
	a.Value = big.NewInt(v)
	return nil
}

func (a *BigIntegerAcceptor) AcceptUnsignedLong(v uint64) error {
	a.Value = new(big.Int).SetUint64(v)
	return nil
}

// DoubleAcceptor backs ReadDouble. Accepts float (widened) and double.
type DoubleAcceptor struct {
	rejectAcceptor
	Value float64
}

func newDoubleAcceptor() *DoubleAcceptor {
	return &DoubleAcceptor{rejectAcceptor: rejectAcceptor{"readDouble"}}
}

func (a *DoubleAcceptor) AcceptFloat(v float32) error {
	a.Value = float64(v)
	return nil
}

func (a *DoubleAcceptor) AcceptDouble(v float64) error {
	a.Value = v
	return nil
}

// BooleanAcceptor backs ReadBool. Accepts exactly boolean.
type BooleanAcceptor struct {
	rejectAcceptor
	Value bool
}

func newBooleanAcceptor() *BooleanAcceptor {
	return &BooleanAcceptor{rejectAcceptor: rejectAcceptor{"readBool"}}
}

func (a *BooleanAcceptor) AcceptBoolean(v bool) error {
	a.Value = v
	return nil
}

// NilAcceptor backs ReadNil. Accepts exactly nil.
type NilAcceptor struct {
	rejectAcceptor
}

func newNilAcceptor() *NilAcceptor { return &NilAcceptor{rejectAcceptor: rejectAcceptor{"readNil"}} }

func (a *NilAcceptor) AcceptNil() error { return nil }

// ByteArrayAcceptor backs ReadByteArray. Accepts a byte array (and an
// empty one as a zero-length, non-nil slice).
type ByteArrayAcceptor struct {
	rejectAcceptor
	Value []byte
}

func newByteArrayAcceptor() *ByteArrayAcceptor {
	return &ByteArrayAcceptor{rejectAcceptor: rejectAcceptor{"readByteArray"}}
}

func (a *ByteArrayAcceptor) AcceptByteArray(b []byte) error {
	a.Value = b
	return nil
}

func (a *ByteArrayAcceptor) AcceptEmptyByteArray() error {
	a.Value = []byte{}
	return nil
}

// StringAcceptor backs ReadString. Accepts a byte array and validates
// it as UTF-8, surfacing malformed UTF-8 as a KindFormat error.
type StringAcceptor struct {
	rejectAcceptor
	Value string
}

func newStringAcceptor() *StringAcceptor {
	return &StringAcceptor{rejectAcceptor: rejectAcceptor{"readString"}}
}

func (a *StringAcceptor) AcceptByteArray(b []byte) error {
	if !utf8.Valid(b) {
		return &DecodeError{Kind: KindFormat, Msg: "readString: invalid UTF-8"}
	}
	a.Value = string(b)
	return nil
}

func (a *StringAcceptor) AcceptEmptyByteArray() error {
	a.Value = ""
	return nil
}

// ArrayAcceptor backs ReadArrayHeader. Captures the announced element count.
type ArrayAcceptor struct {
	rejectAcceptor
	Size int
}

func newArrayAcceptor() *ArrayAcceptor {
	return &ArrayAcceptor{rejectAcceptor: rejectAcceptor{"readArrayHeader"}}
}

func (a *ArrayAcceptor) AcceptArrayHeader(size int) error {
	a.Size = size
	return nil
}

// MapAcceptor backs ReadMapHeader. Captures the announced entry count.
type MapAcceptor struct {
	rejectAcceptor
	Size int
}

func newMapAcceptor() *MapAcceptor {
	return &MapAcceptor{rejectAcceptor: rejectAcceptor{"readMapHeader"}}
}

func (a *MapAcceptor) AcceptMapHeader(size int) error {
	a.Size = size
	return nil
}
