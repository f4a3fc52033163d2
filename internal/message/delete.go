package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// ParseDelRequest reads the primitive OctetString DN body of a DelRequest.
func ParseDelRequest(body ber.Packet) (string, error) {
	if body.Tag != int(TagDelRequest) || body.Form != ber.Primitive {
		return "", ldaperr.New(ldaperr.ProtocolError, "malformed DelRequest")
	}
	return body.String(), nil
}

func BuildDelResponse(code ldaperr.Code, matchedDN, diagnosticMessage string) ber.Packet {
	return BuildLdapResult(code, matchedDN, diagnosticMessage, TagDelResponse)
}
