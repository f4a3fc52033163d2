package ber

// Packet is a decoded BER tag-length-value node. A Primitive packet owns
// Data and no Children; a Constructed packet owns Children and no Data.
// This is the tagged union spec.md §3 calls for, grounded on the Packet
// class in the original ldap program's ber.h (constructor overloads for
// integer/bool/octet-string/raw-bytes collapse here into the New* helpers
// below) and restructured around oba's decoder/encoder split.
type Packet struct {
	Class    Class
	Form     Form
	Tag      int
	Data     []byte
	Children []Packet
}

// NewInteger builds a primitive Universal INTEGER packet.
func NewInteger(v int64) Packet {
	return Packet{Class: ClassUniversal, Form: Primitive, Tag: TagInteger, Data: EncodeInteger(v)}
}

// NewEnumerated builds a primitive Universal ENUMERATED packet.
func NewEnumerated(v int64) Packet {
	return Packet{Class: ClassUniversal, Form: Primitive, Tag: TagEnumerated, Data: EncodeInteger(v)}
}

// NewBoolean builds a primitive Universal BOOLEAN packet.
func NewBoolean(v bool) Packet {
	b := byte(0x00)
	if v {
		b = 0xFF
	}
	return Packet{Class: ClassUniversal, Form: Primitive, Tag: TagBoolean, Data: []byte{b}}
}

// NewOctetString builds a primitive Universal OCTET STRING packet.
func NewOctetString(v string) Packet {
	return Packet{Class: ClassUniversal, Form: Primitive, Tag: TagOctetString, Data: []byte(v)}
}

// NewOctetStringBytes is NewOctetString for a raw byte value.
func NewOctetStringBytes(v []byte) Packet {
	return Packet{Class: ClassUniversal, Form: Primitive, Tag: TagOctetString, Data: v}
}

// NewSequence builds a Constructed Universal SEQUENCE with the given children.
func NewSequence(children ...Packet) Packet {
	return Packet{Class: ClassUniversal, Form: Constructed, Tag: TagSequence, Children: children}
}

// NewSet builds a Constructed Universal SET with the given children.
func NewSet(children ...Packet) Packet {
	return Packet{Class: ClassUniversal, Form: Constructed, Tag: TagSet, Children: children}
}

// NewApp builds a Constructed Application-tagged packet, as used for
// operation bodies in the LDAP envelope.
func NewApp(tag int, children ...Packet) Packet {
	return Packet{Class: ClassApplication, Form: Constructed, Tag: tag, Children: children}
}

// NewAppPrimitive builds a Primitive Application-tagged packet (e.g. a
// bare DelRequest octet string).
func NewAppPrimitive(tag int, data []byte) Packet {
	return Packet{Class: ClassApplication, Form: Primitive, Tag: tag, Data: data}
}

// NewContext builds a Constructed context-specific tagged packet.
func NewContext(tag int, children ...Packet) Packet {
	return Packet{Class: ClassContext, Form: Constructed, Tag: tag, Children: children}
}

// NewContextPrimitive builds a Primitive context-specific tagged packet
// (e.g. BindRequest's simple-password choice).
func NewContextPrimitive(tag int, data []byte) Packet {
	return Packet{Class: ClassContext, Form: Primitive, Tag: tag, Data: data}
}

// AppendChild appends a child to a Constructed packet.
func (p *Packet) AppendChild(c Packet) {
	p.Children = append(p.Children, c)
}

// Int64 interprets a primitive packet's payload as a signed integer.
func (p Packet) Int64() int64 {
	return DecodeInteger(p.Data)
}

// Uint64 interprets a primitive packet's payload as an unsigned integer,
// per spec.md §4.1 ("callers choose signed/unsigned by context").
func (p Packet) Uint64() uint64 {
	return uint64(DecodeInteger(p.Data))
}

// String interprets a primitive packet's payload as an octet string.
func (p Packet) String() string {
	return string(p.Data)
}

// Bool interprets a primitive packet's payload as a boolean: true iff the
// first payload byte is nonzero. An empty payload decodes to false.
func (p Packet) Bool() bool {
	if len(p.Data) == 0 {
		return false
	}
	return p.Data[0] != 0
}

// identifier packs class, form and a 0-30 tag number into one octet.
// Multi-byte (long-form) tag numbers are not part of this protocol's wire
// shape and are rejected by Encode.
func identifier(class Class, form Form, tag int) (byte, error) {
	if tag < 0 || tag > 30 {
		return 0, protoErr("tag number out of range for single-octet identifier")
	}
	return byte(class) | byte(form) | byte(tag), nil
}

func encodeLength(n int) []byte {
	if n <= maxShortFormLength {
		return []byte{byte(n)}
	}
	var content []byte
	for v := n; v > 0; v >>= 8 {
		content = append([]byte{byte(v)}, content...)
	}
	return append([]byte{lengthLongFormBit | byte(len(content))}, content...)
}

// Encode appends the packet's tag/length/value encoding to out and returns
// the extended slice.
func (p Packet) Encode(out []byte) ([]byte, error) {
	id, err := identifier(p.Class, p.Form, p.Tag)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if p.Form == Constructed {
		for _, c := range p.Children {
			payload, err = c.Encode(payload)
			if err != nil {
				return nil, err
			}
		}
	} else {
		payload = p.Data
	}

	out = append(out, id)
	out = append(out, encodeLength(len(payload))...)
	out = append(out, payload...)
	return out, nil
}

// Decode parses one Packet from the front of data, returning the packet
// and the number of bytes consumed. It fails with a ProtocolError if the
// declared length exceeds the available buffer or a child's end overruns
// its parent, per spec.md §4.1.
func Decode(data []byte) (Packet, int, error) {
	if len(data) < 2 {
		return Packet{}, 0, protoErr("truncated packet: need at least identifier and length octets")
	}

	id := data[0]
	class := Class(id & 0xC0)
	form := Form(id & 0x20)
	tag := int(id & 0x1F)
	if tag == 0x1F {
		return Packet{}, 0, protoErr("multi-byte tag numbers not supported")
	}

	length, lenBytes, err := decodeLength(data[1:])
	if err != nil {
		return Packet{}, 0, err
	}

	offset := 1 + lenBytes
	if offset+length > len(data) {
		return Packet{}, 0, protoErr("declared length exceeds available buffer")
	}
	content := data[offset : offset+length]

	p := Packet{Class: class, Form: form, Tag: tag}
	if form == Constructed {
		consumed := 0
		for consumed < len(content) {
			child, n, err := Decode(content[consumed:])
			if err != nil {
				return Packet{}, 0, wrapProtoErr("decoding constructed child", err)
			}
			p.Children = append(p.Children, child)
			consumed += n
		}
	} else {
		p.Data = content
	}

	return p, offset + length, nil
}

// decodeLength reads a BER length field: short form is a single byte
// 0..127; long form is 0x80|n followed by n big-endian content-length
// bytes. An indefinite-length marker (0x80 alone) is rejected.
func decodeLength(data []byte) (length int, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, protoErr("truncated length field")
	}

	first := data[0]
	if first&lengthLongFormBit == 0 {
		return int(first), 1, nil
	}

	n := int(first &^ lengthLongFormBit)
	if n == 0 {
		return 0, 0, protoErr("indefinite-length encoding not supported")
	}
	if len(data) < 1+n {
		return 0, 0, protoErr("truncated long-form length field")
	}

	length = 0
	for i := 0; i < n; i++ {
		length = (length << 8) | int(data[1+i])
	}
	return length, 1 + n, nil
}

// EncodeInteger returns the minimal two's-complement big-endian encoding
// of v: the fewest bytes whose top bit correctly represents the sign.
func EncodeInteger(v int64) []byte {
	if v == 0 {
		return []byte{0x00}
	}

	var bytes []byte
	uv := uint64(v)
	for i := 7; i >= 0; i-- {
		bytes = append(bytes, byte(uv>>(uint(i)*8)))
	}

	// Trim redundant leading sign-extension bytes, keeping the sign bit
	// of the leading byte consistent with v's sign.
	for len(bytes) > 1 {
		lead, next := bytes[0], bytes[1]
		if lead == 0x00 && next&0x80 == 0 {
			bytes = bytes[1:]
			continue
		}
		if lead == 0xFF && next&0x80 != 0 {
			bytes = bytes[1:]
			continue
		}
		break
	}
	return bytes
}

// DecodeInteger reverses EncodeInteger: big-endian two's-complement, any
// well-formed length.
func DecodeInteger(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	var result int64
	if data[0]&0x80 != 0 {
		result = -1
	}
	for _, b := range data {
		result = (result << 8) | int64(b)
	}
	return result
}
