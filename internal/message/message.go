package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// Envelope is the outer Sequence{INTEGER message_id, [APPLICATION n] body}
// wrapper every LDAP request and response shares.
type Envelope struct {
	MessageID int64
	Tag       Tag
	Body      ber.Packet
}

// DecodeEnvelope validates and unwraps the outer envelope. Any shape
// mismatch fails with ProtocolError.
func DecodeEnvelope(p ber.Packet) (Envelope, error) {
	if p.Class != ber.ClassUniversal || p.Form != ber.Constructed || p.Tag != ber.TagSequence {
		return Envelope{}, ldaperr.New(ldaperr.ProtocolError, "envelope is not a universal sequence")
	}
	if len(p.Children) != 2 {
		return Envelope{}, ldaperr.New(ldaperr.ProtocolError, "envelope must have exactly message_id and body")
	}

	idPkt := p.Children[0]
	if idPkt.Class != ber.ClassUniversal || idPkt.Form != ber.Primitive || idPkt.Tag != ber.TagInteger {
		return Envelope{}, ldaperr.New(ldaperr.ProtocolError, "envelope message_id is not an integer")
	}

	// Most operations carry a constructed body, but a handful (DelRequest,
	// UnbindRequest) are primitive per RFC 4511 — each Parse* function
	// validates its own required form, so the envelope layer only checks
	// the tag class.
	body := p.Children[1]
	if body.Class != ber.ClassApplication {
		return Envelope{}, ldaperr.New(ldaperr.ProtocolError, "envelope body is not an application-tagged packet")
	}

	return Envelope{MessageID: idPkt.Int64(), Tag: Tag(body.Tag), Body: body}, nil
}

// BuildLdapResult builds an {resultCode, matchedDN, diagnosticMessage}
// result body Application-tagged with responseTag, grounded on
// Ldap::buildLdapResult in the original program's ldapproto.h/.cpp.
func BuildLdapResult(code ldaperr.Code, matchedDN, diagnosticMessage string, responseTag Tag) ber.Packet {
	return ber.NewApp(int(responseTag),
		ber.NewEnumerated(int64(code)),
		ber.NewOctetString(matchedDN),
		ber.NewOctetString(diagnosticMessage),
	)
}

// BuildErrorEnvelope builds a result body from err with BuildLdapResult,
// tagged with requestTag's error response tag, and wraps it in the outer
// message-id envelope.
func BuildErrorEnvelope(messageID int64, err error, requestTag Tag) ber.Packet {
	le := ldaperr.AsError(err)
	body := BuildLdapResult(le.Code, le.MatchedDN, le.Message, ErrorResponseTag(requestTag))
	return ber.NewSequence(ber.NewInteger(messageID), body)
}

// BuildEnvelope wraps an already-built response body in the message-id
// envelope, for success responses.
func BuildEnvelope(messageID int64, body ber.Packet) ber.Packet {
	return ber.NewSequence(ber.NewInteger(messageID), body)
}
