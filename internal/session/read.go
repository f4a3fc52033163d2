package session

import (
	"bufio"
	"io"

	"github.com/obadir/obad/internal/ldaperr"
)

// readPDU reads one BER TLV off r without knowing its shape in advance:
// identifier byte, then a length (short or long form), then that many
// content bytes. Grounded on the teacher's Connection.ReadMessage, which
// reads the same three pieces directly off the socket before handing the
// reassembled bytes to a decoder.
func readPDU(r *bufio.Reader) ([]byte, error) {
	identifier, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	firstLenByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	var lengthBytes []byte
	var length int
	if firstLenByte&0x80 == 0 {
		lengthBytes = []byte{firstLenByte}
		length = int(firstLenByte)
	} else {
		numBytes := int(firstLenByte & 0x7F)
		if numBytes == 0 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "indefinite-length BER not supported")
		}
		rest := make([]byte, numBytes)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, err
		}
		for _, b := range rest {
			length = (length << 8) | int(b)
		}
		lengthBytes = append([]byte{firstLenByte}, rest...)
	}

	content := make([]byte, length)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(lengthBytes)+length)
	out = append(out, identifier)
	out = append(out, lengthBytes...)
	out = append(out, content...)
	return out, nil
}
