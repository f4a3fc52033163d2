package filter

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// ParseWire builds a Filter tree from a context-tagged BER filter packet.
// The top-level packet's tag number selects the node kind per spec.md
// §4.3: 0=And, 1=Or, 2=Not, 3=Equal, 4=Substring, 5=Gte, 6=Lte, 7=Present,
// 8=Approx, 9=Extensible. And/Or require at least 2 children on the wire;
// Not requires exactly 1.
func ParseWire(p ber.Packet) (*Filter, error) {
	switch Type(p.Tag) {
	case And, Or:
		if len(p.Children) < 2 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "wire And/Or filter requires at least 2 children")
		}
		children := make([]*Filter, len(p.Children))
		for i, c := range p.Children {
			child, err := ParseWire(c)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return &Filter{Type: Type(p.Tag), Children: children}, nil

	case Not:
		if len(p.Children) != 1 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "wire Not filter requires exactly 1 child")
		}
		child, err := ParseWire(p.Children[0])
		if err != nil {
			return nil, err
		}
		return &Filter{Type: Not, Child: child}, nil

	case Equal, Gte, Lte, Approx:
		if len(p.Children) != 2 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "wire attribute-value filter requires exactly 2 children")
		}
		return &Filter{
			Type:      Type(p.Tag),
			Attribute: p.Children[0].String(),
			Value:     p.Children[1].String(),
		}, nil

	case Present:
		return &Filter{Type: Present, Attribute: p.String()}, nil

	case Substring:
		if len(p.Children) != 2 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "wire substring filter requires attribute and substrings")
		}
		attr := p.Children[0].String()
		parts, err := parseWireSubstrings(p.Children[1])
		if err != nil {
			return nil, err
		}
		return &Filter{Type: Substring, Attribute: attr, Parts: parts}, nil

	case Extensible:
		return nil, ldaperr.New(ldaperr.UnavailableCriticalExtension, "extensible match filters are not supported")

	default:
		return nil, ldaperr.New(ldaperr.ProtocolError, "unrecognized filter tag")
	}
}

// parseWireSubstrings walks a SEQUENCE of context-tagged (0=initial,
// 1=any, 2=final) octet strings.
func parseWireSubstrings(seq ber.Packet) ([]SubPart, error) {
	parts := make([]SubPart, 0, len(seq.Children))
	for _, c := range seq.Children {
		var kind SubPartKind
		switch c.Tag {
		case 0:
			kind = Initial
		case 1:
			kind = Any
		case 2:
			kind = Final
		default:
			return nil, ldaperr.New(ldaperr.ProtocolError, "unrecognized substring part tag")
		}
		parts = append(parts, SubPart{Kind: kind, Literal: c.String()})
	}
	return parts, nil
}

// EncodeWire is the inverse of ParseWire, used when this server itself
// needs to emit a filter on the wire (not exercised by the dispatcher
// today, but kept symmetric with the BER round-trip property in
// spec.md §8).
func EncodeWire(f *Filter) ber.Packet {
	switch f.Type {
	case And, Or:
		children := make([]ber.Packet, len(f.Children))
		for i, c := range f.Children {
			children[i] = EncodeWire(c)
		}
		return ber.Packet{Class: ber.ClassContext, Form: ber.Constructed, Tag: int(f.Type), Children: children}
	case Not:
		return ber.Packet{Class: ber.ClassContext, Form: ber.Constructed, Tag: int(Not), Children: []ber.Packet{EncodeWire(f.Child)}}
	case Equal, Gte, Lte, Approx:
		return ber.Packet{Class: ber.ClassContext, Form: ber.Constructed, Tag: int(f.Type), Children: []ber.Packet{
			ber.NewOctetString(f.Attribute), ber.NewOctetString(f.Value),
		}}
	case Present:
		return ber.NewContextPrimitive(int(Present), []byte(f.Attribute))
	case Substring:
		parts := make([]ber.Packet, len(f.Parts))
		for i, p := range f.Parts {
			parts[i] = ber.NewContextPrimitive(int(p.Kind), []byte(p.Literal))
		}
		return ber.Packet{Class: ber.ClassContext, Form: ber.Constructed, Tag: int(Substring), Children: []ber.Packet{
			ber.NewOctetString(f.Attribute),
			{Class: ber.ClassUniversal, Form: ber.Constructed, Tag: ber.TagSequence, Children: parts},
		}}
	default:
		return ber.Packet{Class: ber.ClassContext, Form: ber.Constructed, Tag: int(f.Type)}
	}
}
