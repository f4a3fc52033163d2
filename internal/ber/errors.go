package ber

import "github.com/obadir/obad/internal/ldaperr"

func protoErr(msg string) error {
	return ldaperr.New(ldaperr.ProtocolError, msg)
}

func wrapProtoErr(msg string, cause error) error {
	return ldaperr.Wrap(ldaperr.ProtocolError, msg, cause)
}
