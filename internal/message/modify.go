package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// ModOp is a ModifyRequest operation kind.
type ModOp int

const (
	ModAdd     ModOp = 0
	ModDelete  ModOp = 1
	ModReplace ModOp = 2
)

// Modification is one (op, attr_name, values) entry of a ModifyRequest.
type Modification struct {
	Op        ModOp
	Attribute string
	Values    []string
}

// ModifyRequest is the parsed body of a ModifyRequest PDU.
type ModifyRequest struct {
	DN            string
	Modifications []Modification
}

// ParseModifyRequest walks {dn, modifications:[(op, attr_name, values)]}.
func ParseModifyRequest(body ber.Packet) (ModifyRequest, error) {
	if body.Tag != int(TagModifyRequest) || len(body.Children) != 2 {
		return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "malformed ModifyRequest")
	}

	dn, mods := body.Children[0], body.Children[1]
	if dn.Class != ber.ClassUniversal || dn.Tag != ber.TagOctetString {
		return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest dn is not an octet string")
	}
	if mods.Class != ber.ClassUniversal || mods.Form != ber.Constructed {
		return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest modifications is not a sequence")
	}

	req := ModifyRequest{DN: dn.String()}
	for _, m := range mods.Children {
		if len(m.Children) != 2 {
			return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest modification malformed")
		}
		opPkt, avPkt := m.Children[0], m.Children[1]
		op := ModOp(opPkt.Int64())
		if op < ModAdd || op > ModReplace {
			return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest operation out of range")
		}
		if len(avPkt.Children) != 2 {
			return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest attribute-value assertion malformed")
		}
		attr := avPkt.Children[0].String()
		valuesPkt := avPkt.Children[1]
		if valuesPkt.Class != ber.ClassUniversal || valuesPkt.Tag != ber.TagSet {
			return ModifyRequest{}, ldaperr.New(ldaperr.ProtocolError, "ModifyRequest values is not a set")
		}
		var values []string
		for _, v := range valuesPkt.Children {
			values = append(values, v.String())
		}
		req.Modifications = append(req.Modifications, Modification{Op: op, Attribute: attr, Values: values})
	}

	return req, nil
}

func BuildModifyResponse(code ldaperr.Code, matchedDN, diagnosticMessage string) ber.Packet {
	return BuildLdapResult(code, matchedDN, diagnosticMessage, TagModifyResponse)
}
