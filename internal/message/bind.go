package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// AuthKind distinguishes a BindRequest's credential choice.
type AuthKind int

const (
	AuthSimple AuthKind = 0
	AuthSASL   AuthKind = 3
)

// BindRequest is the parsed body of a BindRequest PDU.
type BindRequest struct {
	Version int64
	DN      string
	Kind    AuthKind

	// Simple auth.
	SimplePassword string

	// SASL auth.
	SASLMechanism   string
	SASLCredentials []byte
}

// ParseBindRequest walks a BindRequest application body:
// {version:int, dn:string, credentials}, where credentials is Context-tag 0
// (simple password, primitive octet string) or Context-tag 3 (SASL:
// {mech:string, credentials?:bytes}).
func ParseBindRequest(body ber.Packet) (BindRequest, error) {
	if body.Tag != int(TagBindRequest) || len(body.Children) != 3 {
		return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "malformed BindRequest")
	}

	version, dn, creds := body.Children[0], body.Children[1], body.Children[2]
	if version.Class != ber.ClassUniversal || version.Tag != ber.TagInteger {
		return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "BindRequest version is not an integer")
	}
	if dn.Class != ber.ClassUniversal || dn.Tag != ber.TagOctetString {
		return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "BindRequest dn is not an octet string")
	}

	req := BindRequest{Version: version.Int64(), DN: dn.String()}

	if creds.Class != ber.ClassContext {
		return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "BindRequest credentials have an unrecognized tag")
	}

	switch creds.Tag {
	case int(AuthSimple):
		req.Kind = AuthSimple
		req.SimplePassword = creds.String()
	case int(AuthSASL):
		req.Kind = AuthSASL
		if len(creds.Children) < 1 {
			return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "SASL credentials missing mechanism")
		}
		req.SASLMechanism = creds.Children[0].String()
		if len(creds.Children) > 1 {
			req.SASLCredentials = creds.Children[1].Data
		}
	default:
		return BindRequest{}, ldaperr.New(ldaperr.ProtocolError, "BindRequest credentials have an unrecognized tag")
	}

	return req, nil
}

// BuildBindResponse builds a successful (or failed, with a non-success
// code) BindResponse body.
func BuildBindResponse(code ldaperr.Code, matchedDN, diagnosticMessage string) ber.Packet {
	return BuildLdapResult(code, matchedDN, diagnosticMessage, TagBindResponse)
}
