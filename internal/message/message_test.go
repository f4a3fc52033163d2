package message

import (
	"testing"

	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTripBindRequest(t *testing.T) {
	wire := ber.NewSequence(
		ber.NewInteger(1),
		ber.NewApp(int(TagBindRequest),
			ber.NewInteger(3),
			ber.NewOctetString("cn=a"),
			ber.NewContextPrimitive(0, []byte("x")),
		),
	)

	encoded, err := wire.Encode(nil)
	require.NoError(t, err)

	decoded, n, err := ber.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)

	env, err := DecodeEnvelope(decoded)
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.MessageID)
	assert.Equal(t, TagBindRequest, env.Tag)

	bind, err := ParseBindRequest(env.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(3), bind.Version)
	assert.Equal(t, "cn=a", bind.DN)
	assert.Equal(t, AuthSimple, bind.Kind)
	assert.Equal(t, "x", bind.SimplePassword)
}

func TestEnvelopeRoundTripDelRequest(t *testing.T) {
	wire := ber.NewSequence(
		ber.NewInteger(2),
		ber.NewAppPrimitive(int(TagDelRequest), []byte("cn=a,dc=example")),
	)

	encoded, err := wire.Encode(nil)
	require.NoError(t, err)

	decoded, _, err := ber.Decode(encoded)
	require.NoError(t, err)

	env, err := DecodeEnvelope(decoded)
	require.NoError(t, err)
	assert.Equal(t, TagDelRequest, env.Tag)

	dn, err := ParseDelRequest(env.Body)
	require.NoError(t, err)
	assert.Equal(t, "cn=a,dc=example", dn)
}

func TestEnvelopeRoundTripUnbindRequest(t *testing.T) {
	wire := ber.NewSequence(
		ber.NewInteger(3),
		ber.NewAppPrimitive(int(TagUnbindRequest), nil),
	)

	encoded, err := wire.Encode(nil)
	require.NoError(t, err)

	decoded, _, err := ber.Decode(encoded)
	require.NoError(t, err)

	env, err := DecodeEnvelope(decoded)
	require.NoError(t, err)
	assert.Equal(t, TagUnbindRequest, env.Tag)
}

func TestErrorResponseTagMapping(t *testing.T) {
	assert.Equal(t, TagSearchResDone, ErrorResponseTag(TagSearchRequest))
	assert.Equal(t, TagBindResponse, ErrorResponseTag(TagBindRequest))
	assert.Equal(t, TagAddResponse, ErrorResponseTag(TagAddRequest))
	assert.Equal(t, TagDelResponse, ErrorResponseTag(TagDelRequest))
}

func TestParseAddRequest(t *testing.T) {
	body := ber.NewApp(int(TagAddRequest),
		ber.NewOctetString("cn=a,dc=example"),
		ber.NewSequence(
			ber.NewSequence(ber.NewOctetString("cn"), ber.NewSet(ber.NewOctetString("a"))),
		),
	)

	entry, err := ParseAddRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "cn=a,dc=example", entry.DN)
	assert.Equal(t, []string{"a"}, entry.Attributes["cn"])
}

func TestParseDelRequest(t *testing.T) {
	body := ber.NewAppPrimitive(int(TagDelRequest), []byte("cn=a,dc=example"))
	dn, err := ParseDelRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "cn=a,dc=example", dn)
}

func TestBuildLdapResultWraps(t *testing.T) {
	result := BuildLdapResult(ldaperr.InvalidCredentials, "", "bad password", TagBindResponse)
	assert.Equal(t, int(TagBindResponse), result.Tag)
	require.Len(t, result.Children, 3)
	assert.Equal(t, int64(ldaperr.InvalidCredentials), result.Children[0].Int64())
}
