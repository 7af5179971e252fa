package msgpack

// Code here is organized as follows:
//   Typed read methods (read.go) call readToken with the matching Acceptor.
//   readToken reads (or reuses a cached) head byte, classifies it by tag
//   family, and drives the appropriate sub-reader, delivering exactly one
//   accept-* call to the caller-supplied Acceptor.
//   Internal helpers use fail (panic) on error; public entry points recover
//   via guard. See errors.go.

// headEmpty is the sentinel cache state meaning "fetch a fresh byte on
// next demand". 0xC6 is otherwise unused by the classic MessagePack tag
// set this decoder implements, so it is safe to use as an out-of-band
// marker; any tag guaranteed invalid would do.
const headEmpty = 0xC6

// Format tag bytes, per the classic (pre-str/bin-split) MessagePack tag set.
const (
	tagNil        = 0xC0
	tagFalse      = 0xC2
	tagTrue       = 0xC3
	tagFloat32    = 0xCA
	tagFloat64    = 0xCB
	tagUint8      = 0xCC
	tagUint16     = 0xCD
	tagUint32     = 0xCE
	tagUint64     = 0xCF
	tagInt8       = 0xD0
	tagInt16      = 0xD1
	tagInt32      = 0xD2
	tagInt64      = 0xD3
	tagRaw16      = 0xDA
	tagRaw32      = 0xDB
	tagArray16    = 0xDC
	tagArray32    = 0xDD
	tagMap16      = 0xDE
	tagMap32      = 0xDF

	fixrawMask   = 0xE0
	fixrawTag    = 0xA0
	fixarrayMask = 0xF0
	fixarrayTag  = 0x90
	fixmapMask   = 0xF0
	fixmapTag    = 0x80
)

// Decoder reads a sequence of MessagePack value tokens from a Channel.
// A Decoder is not safe for concurrent use; each instance is owned by
// exactly one caller at a time.
type Decoder struct {
	ch     Channel
	limits Limits

	// head is the head-byte cache: headEmpty means "fetch on next
	// demand"; any other value is the tag byte of the next unread value.
	head byte

	// rawBuf/rawFilled carry a partially filled raw body across
	// readToken calls, so a previously interrupted raw read resumes
	// instead of restarting. Invariant: if rawBuf != nil, 0 <= rawFilled
	// <= len(rawBuf), and the buffer is "in progress".
	rawBuf    []byte
	rawFilled int
}

// Close closes the underlying channel. The Decoder must not be used afterward.
func (d *Decoder) Close() error {
	return d.ch.Close()
}

// getHead returns the cached head byte, fetching one from the channel
// if the cache is empty. It does not clear the cache.
func (d *Decoder) getHead() byte {
	if d.head == headEmpty {
		b, err := d.ch.ReadByte()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.head = b
	}
	return d.head
}

// resetHead clears the cache, marking the head byte consumed.
func (d *Decoder) resetHead() {
	d.head = headEmpty
}

// NextType peeks the head byte and classifies it without consuming the
// cache or allocating. Unknown tags fail with a KindFormat error.
func (d *Decoder) NextType() (vt ValueType, err error) {
	defer guard(&err)
	b := d.getHead()
	return classify(b), nil
}

func classify(b byte) ValueType {
	switch {
	case b>>7 == 0: // positive fixnum 0b0xxxxxxx
		return TypeInteger
	case b&0xE0 == 0xE0: // negative fixnum 0b111xxxxx
		return TypeInteger
	case b&fixrawMask == fixrawTag, b == tagRaw16, b == tagRaw32:
		return TypeRaw
	case b&fixarrayMask == fixarrayTag, b == tagArray16, b == tagArray32:
		return TypeArray
	case b&fixmapMask == fixmapTag, b == tagMap16, b == tagMap32:
		return TypeMap
	case b == tagNil:
		return TypeNil
	case b == tagFalse, b == tagTrue:
		return TypeBoolean
	case b == tagFloat32, b == tagFloat64:
		return TypeFloat
	case b == tagUint8, b == tagUint16, b == tagUint32, b == tagUint64,
		b == tagInt8, b == tagInt16, b == tagInt32, b == tagInt64:
		return TypeInteger
	default:
		fail(newFormatErr(b, "%s", msgBadDesc))
		panic("unreachable")
	}
}

const msgBadDesc = "unrecognized descriptor byte"

// TrySkipNil peeks the head byte. If it is the nil tag, it clears the
// cache and returns true. Otherwise the cache is left primed and it
// returns false — including when the peeked byte is itself an unknown
// tag: a peek should never fail on its own, so the format error is
// deferred to the next real read rather than raised here.
func (d *Decoder) TrySkipNil() (skipped bool, err error) {
	defer guard(&err)
	b := d.getHead()
	if b == tagNil {
		d.resetHead()
		return true, nil
	}
	return false, nil
}

// Skip reads and discards exactly one full value: a scalar, or a
// container header together with all of its (recursively nested)
// elements. It is a companion to TrySkipNil for the general case of
// an unknown or uninteresting field.
func (d *Decoder) Skip() (err error) {
	defer guard(&err)
	d.skip()
	return nil
}

func (d *Decoder) skip() {
	vt := classify(d.getHead())
	switch vt {
	case TypeArray:
		a := newArrayAcceptor()
		d.dispatch(a)
		for i := 0; i < a.Size; i++ {
			d.skip()
		}
	case TypeMap:
		m := newMapAcceptor()
		d.dispatch(m)
		for i := 0; i < m.Size; i++ {
			d.skip() // key
			d.skip() // value
		}
	default:
		d.skipScalar(vt)
	}
}

// skipScalar drains exactly one non-container value using a
// skipAcceptor, which accepts every kind, so the dispatcher's normal
// accept-* call succeeds regardless of which scalar kind is present.
func (d *Decoder) skipScalar(vt ValueType) {
	switch vt {
	case TypeInteger, TypeFloat, TypeBoolean, TypeNil, TypeRaw:
		d.dispatch(&skipAcceptor{})
	default:
		fail(newFormatErr(d.head, "%s", msgBadDesc))
	}
}

// skipAcceptor accepts every scalar kind and discards the value; used
// only by Skip.
type skipAcceptor struct{}

func (skipAcceptor) AcceptInt(int32) error            { return nil }
func (skipAcceptor) AcceptLong(int64) error           { return nil }
func (skipAcceptor) AcceptUnsignedLong(uint64) error  { return nil }
func (skipAcceptor) AcceptFloat(float32) error        { return nil }
func (skipAcceptor) AcceptDouble(float64) error       { return nil }
func (skipAcceptor) AcceptBoolean(bool) error         { return nil }
func (skipAcceptor) AcceptNil() error                 { return nil }
func (skipAcceptor) AcceptByteArray([]byte) error     { return nil }
func (skipAcceptor) AcceptEmptyByteArray() error      { return nil }
func (skipAcceptor) AcceptArrayHeader(int) error      { return nil }
func (skipAcceptor) AcceptMapHeader(int) error        { return nil }

// ReadToken is the low-level escape hatch: it reads one token from the
// stream and delivers it to acceptor. Most callers should use the
// typed read methods in read.go instead.
func (d *Decoder) ReadToken(acceptor Acceptor) (err error) {
	defer guard(&err)
	d.dispatch(acceptor)
	return nil
}

// dispatch is readToken's panic-based implementation.
func (d *Decoder) dispatch(acceptor Acceptor) {
	// Resume path: a prior raw read was interrupted mid-fill. Finish it
	// before considering a new token.
	if d.rawBuf != nil {
		d.fillRaw()
		buf := d.rawBuf
		d.rawBuf = nil
		d.rawFilled = 0
		d.resetHead()
		if len(buf) == 0 {
			mustAccept(acceptor.AcceptEmptyByteArray())
		} else {
			mustAccept(acceptor.AcceptByteArray(buf))
		}
		return
	}

	b := d.getHead()

	switch {
	case b>>7 == 0: // positive fixnum
		d.resetHead()
		mustAccept(acceptor.AcceptInt(int32(b)))
	case b&0xE0 == 0xE0: // negative fixnum, sign-extend the low 5 bits
		d.resetHead()
		mustAccept(acceptor.AcceptInt(int32(int8(b))))

	case b&fixrawMask == fixrawTag:
		d.resetHead()
		d.emitRaw(int(b&0x1F), acceptor)
	case b == tagRaw16:
		d.resetHead()
		n, err := d.ch.ReadShort()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitRaw(int(uint16(n)), acceptor)
	case b == tagRaw32:
		d.resetHead()
		n, err := d.ch.ReadInt()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitRaw(int(uint32(n)), acceptor)

	case b&fixarrayMask == fixarrayTag:
		d.resetHead()
		d.emitArray(int(b & 0x0F), acceptor)
	case b == tagArray16:
		d.resetHead()
		n, err := d.ch.ReadShort()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitArray(int(uint16(n)), acceptor)
	case b == tagArray32:
		d.resetHead()
		n, err := d.ch.ReadInt()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitArray(int(uint32(n)), acceptor)

	case b&fixmapMask == fixmapTag:
		d.resetHead()
		d.emitMap(int(b & 0x0F), acceptor)
	case b == tagMap16:
		d.resetHead()
		n, err := d.ch.ReadShort()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitMap(int(uint16(n)), acceptor)
	case b == tagMap32:
		d.resetHead()
		n, err := d.ch.ReadInt()
		if err != nil {
			fail(asDecodeError(err))
		}
		d.emitMap(int(uint32(n)), acceptor)

	case b == tagNil:
		d.resetHead()
		mustAccept(acceptor.AcceptNil())
	case b == tagFalse:
		d.resetHead()
		mustAccept(acceptor.AcceptBoolean(false))
	case b == tagTrue:
		d.resetHead()
		mustAccept(acceptor.AcceptBoolean(true))

	case b == tagFloat32:
		d.resetHead()
		v, err := d.ch.ReadFloat()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptFloat(v))
	case b == tagFloat64:
		d.resetHead()
		v, err := d.ch.ReadDouble()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptDouble(v))

	case b == tagUint8:
		d.resetHead()
		v, err := d.ch.ReadByte()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptInt(int32(v)))
	case b == tagUint16:
		d.resetHead()
		v, err := d.ch.ReadShort()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptInt(int32(uint16(v))))
	case b == tagUint32:
		d.resetHead()
		v, err := d.ch.ReadInt()
		if err != nil {
			fail(asDecodeError(err))
		}
		u := uint32(v)
		if u&0x80000000 != 0 {
			// Promote: value = low 31 bits + 2**31.
			mustAccept(acceptor.AcceptLong(int64(u&0x7FFFFFFF) + (1 << 31)))
		} else {
			mustAccept(acceptor.AcceptInt(int32(u)))
		}
	case b == tagUint64:
		d.resetHead()
		v, err := d.ch.ReadLong()
		if err != nil {
			fail(asDecodeError(err))
		}
		if v < 0 {
			// The 64-bit pattern, reinterpreted as signed, is negative:
			// the true unsigned value is >= 2**63 and does not fit int64.
			mustAccept(acceptor.AcceptUnsignedLong(uint64(v)))
		} else {
			mustAccept(acceptor.AcceptLong(v))
		}

	case b == tagInt8:
		d.resetHead()
		v, err := d.ch.ReadByte()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptInt(int32(int8(v))))
	case b == tagInt16:
		d.resetHead()
		v, err := d.ch.ReadShort()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptInt(int32(v)))
	case b == tagInt32:
		d.resetHead()
		v, err := d.ch.ReadInt()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptInt(v))
	case b == tagInt64:
		d.resetHead()
		v, err := d.ch.ReadLong()
		if err != nil {
			fail(asDecodeError(err))
		}
		mustAccept(acceptor.AcceptLong(v))

	default:
		fail(newFormatErr(b, "%s", msgBadDesc))
	}
}

// mustAccept panics with acceptor errors the same way the rest of
// dispatch panics with channel errors, so a single guard at the public
// boundary (ReadToken, the typed read methods) catches both.
func mustAccept(err error) {
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			fail(de)
		}
		fail(&DecodeError{Kind: KindType, Msg: err.Error()})
	}
}

func (d *Decoder) emitRaw(length int, acceptor Acceptor) {
	if length < 0 || int64(length) >= int64(d.limits.MaxRawLen) {
		fail(newSizeLimitErr(int64(length), int64(d.limits.MaxRawLen), "raw length exceeds limit"))
	}
	if length == 0 {
		mustAccept(acceptor.AcceptEmptyByteArray())
		return
	}
	d.rawBuf = make([]byte, length)
	d.rawFilled = 0
	d.fillRaw()
	buf := d.rawBuf
	d.rawBuf = nil
	d.rawFilled = 0
	mustAccept(acceptor.AcceptByteArray(buf))
}

// fillRaw drives the channel until rawBuf is completely filled or
// end-of-stream is signaled. A partial read is followed by another
// read; a read that returns no bytes before the buffer is full is
// treated as end-of-stream and fails. A failure leaves the partial fill
// in place so the next readToken call resumes from where this one left
// off instead of restarting the body.
func (d *Decoder) fillRaw() {
	for d.rawFilled < len(d.rawBuf) {
		n, err := d.ch.Read(d.rawBuf[d.rawFilled:])
		d.rawFilled += n
		if err != nil {
			fail(asDecodeError(err))
		}
		if n == 0 && d.rawFilled < len(d.rawBuf) {
			fail(newEOFErr(nil))
		}
	}
}

func (d *Decoder) emitArray(length int, acceptor Acceptor) {
	if length < 0 || int64(length) >= int64(d.limits.MaxArrayLen) {
		fail(newSizeLimitErr(int64(length), int64(d.limits.MaxArrayLen), "array length exceeds limit"))
	}
	mustAccept(acceptor.AcceptArrayHeader(length))
}

func (d *Decoder) emitMap(length int, acceptor Acceptor) {
	if length < 0 || int64(length) >= int64(d.limits.MaxMapLen) {
		fail(newSizeLimitErr(int64(length), int64(d.limits.MaxMapLen), "map length exceeds limit"))
	}
	mustAccept(acceptor.AcceptMapHeader(length))
}
