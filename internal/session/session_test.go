package session

import (
	"bufio"
	"net"
	"testing"

	"github.com/obadir/obad/internal/acl"
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/filter"
	"github.com/obadir/obad/internal/ldaperr"
	"github.com/obadir/obad/internal/message"
	"github.com/obadir/obad/internal/password"
	"github.com/obadir/obad/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, rules []string) (*Session, *storage.Memory, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	store := storage.NewMemory(rules)
	mgr := acl.NewManager(store.AccessRules, nil, store.LookupGroup)
	require.NoError(t, mgr.Refresh())

	return New(server, store, mgr, nil, false), store, client
}

func bindBody(dn, pw string) ber.Packet {
	return ber.NewApp(int(message.TagBindRequest),
		ber.NewInteger(3),
		ber.NewOctetString(dn),
		ber.NewContextPrimitive(int(message.AuthSimple), []byte(pw)),
	)
}

func TestHandleBindAnonymousAlwaysSucceeds(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	resp, err := s.handleBind(bindBody("", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())
}

func TestHandleBindChecksPasswordHash(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	hash, err := password.Hash("s3cret")
	require.NoError(t, err)

	e := message.NewEntry("uid=alice,dc=example")
	e.AppendValue("userPassword", hash)
	require.NoError(t, store.SaveEntry(e, true))

	resp, err := s.handleBind(bindBody("uid=alice,dc=example", "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())

	resp, err = s.handleBind(bindBody("uid=alice,dc=example", "wrong"))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.InvalidCredentials), resp.Children[0].Int64())
}

func addBody(dn string, attrs map[string][]string) ber.Packet {
	attrSeq := ber.NewSequence()
	for name, values := range attrs {
		valuePackets := make([]ber.Packet, len(values))
		for i, v := range values {
			valuePackets[i] = ber.NewOctetString(v)
		}
		attrSeq.Children = append(attrSeq.Children, ber.NewSequence(ber.NewOctetString(name), ber.NewSet(valuePackets...)))
	}
	return ber.NewApp(int(message.TagAddRequest), ber.NewOctetString(dn), attrSeq)
}

func TestHandleAddDeniedWithoutWriteAccess(t *testing.T) {
	s, _, _ := newTestSession(t, []string{"to * by * read"})
	resp, err := s.handleAdd(addBody("uid=bob,dc=example", map[string][]string{"objectClass": {"person"}}))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.InsufficientAccessRights), resp.Children[0].Int64())
}

func TestHandleAddAllowedThenFindable(t *testing.T) {
	s, store, _ := newTestSession(t, []string{"to * by * write"})
	resp, err := s.handleAdd(addBody("uid=bob,dc=example", map[string][]string{"objectClass": {"person"}}))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())

	got, err := store.FindEntry("uid=bob,dc=example")
	require.NoError(t, err)
	assert.Equal(t, []string{"person"}, got.Attributes["objectClass"])
}

func delBody(dn string) ber.Packet {
	return ber.Packet{Class: ber.ClassApplication, Form: ber.Primitive, Tag: int(message.TagDelRequest), Data: []byte(dn)}
}

func TestHandleDeleteRemovesSubtree(t *testing.T) {
	s, store, _ := newTestSession(t, []string{"to * by * write"})
	require.NoError(t, store.SaveEntry(message.NewEntry("ou=people,dc=example"), true))
	require.NoError(t, store.SaveEntry(message.NewEntry("uid=bob,ou=people,dc=example"), true))

	resp, err := s.handleDelete(delBody("ou=people,dc=example"))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())

	_, err = store.FindEntry("uid=bob,ou=people,dc=example")
	assert.Error(t, err)
}

func modifyBody(dn string, op message.ModOp, attr string, values []string) ber.Packet {
	valuePackets := make([]ber.Packet, len(values))
	for i, v := range values {
		valuePackets[i] = ber.NewOctetString(v)
	}
	mod := ber.NewSequence(ber.NewInteger(int64(op)), ber.NewSequence(ber.NewOctetString(attr), ber.NewSet(valuePackets...)))
	return ber.NewApp(int(message.TagModifyRequest), ber.NewOctetString(dn), ber.NewSequence(mod))
}

func TestHandleModifyAddThenDelete(t *testing.T) {
	s, store, _ := newTestSession(t, []string{"to * by * write"})
	e := message.NewEntry("uid=bob,dc=example")
	e.AppendValue("cn", "Bob")
	require.NoError(t, store.SaveEntry(e, true))

	resp, err := s.handleModify(modifyBody("uid=bob,dc=example", message.ModAdd, "mail", []string{"bob@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())

	got, err := store.FindEntry("uid=bob,dc=example")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, got.Attributes["mail"])

	resp, err = s.handleModify(modifyBody("uid=bob,dc=example", message.ModDelete, "mail", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.Success), resp.Children[0].Int64())

	got, err = store.FindEntry("uid=bob,dc=example")
	require.NoError(t, err)
	_, ok := got.Attributes["mail"]
	assert.False(t, ok)
}

func TestHandleModifyDeleteMissingAttributeFails(t *testing.T) {
	s, store, _ := newTestSession(t, []string{"to * by * write"})
	require.NoError(t, store.SaveEntry(message.NewEntry("uid=bob,dc=example"), true))

	resp, err := s.handleModify(modifyBody("uid=bob,dc=example", message.ModDelete, "mail", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.NoSuchAttribute), resp.Children[0].Int64())
}

func compareBody(dn, attr, value string) ber.Packet {
	return ber.NewApp(int(message.TagCompareRequest),
		ber.NewOctetString(dn),
		ber.NewSequence(ber.NewOctetString(attr), ber.NewOctetString(value)),
	)
}

func searchBody(base string, scope message.Scope) ber.Packet {
	return ber.NewApp(int(message.TagSearchRequest),
		ber.NewOctetString(base),
		ber.NewInteger(int64(scope)),
		ber.NewInteger(int64(message.DerefNever)),
		ber.NewInteger(0),
		ber.NewInteger(0),
		ber.NewBoolean(false),
		ber.NewContextPrimitive(int(filter.Present), []byte("objectClass")),
		ber.NewSequence(),
	)
}

func TestHandleSearchOnlyReturnsReadableEntries(t *testing.T) {
	s, store, client := newTestSession(t, []string{"to * by * read"})
	root := message.NewEntry("dc=example")
	root.AppendValue("objectClass", "domain")
	require.NoError(t, store.SaveEntry(root, true))
	alice := message.NewEntry("uid=alice,dc=example")
	alice.AppendValue("objectClass", "person")
	require.NoError(t, store.SaveEntry(alice, true))

	var entries []ber.Packet
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(client)
		for {
			raw, err := readPDU(r)
			if err != nil {
				return
			}
			pkt, _, err := ber.Decode(raw)
			require.NoError(t, err)
			env, err := message.DecodeEnvelope(pkt)
			require.NoError(t, err)
			if env.Tag == message.TagSearchResDone {
				return
			}
			entries = append(entries, env.Body)
		}
	}()

	env := message.Envelope{MessageID: 1, Tag: message.TagSearchRequest, Body: searchBody("dc=example", message.ScopeSub)}
	_, err := s.handleSearch(env)
	require.NoError(t, err)
	s.conn.Close()
	<-done

	assert.Len(t, entries, 2)
}

func TestHandleCompareTrueFalse(t *testing.T) {
	s, store, _ := newTestSession(t, []string{"to * by * compare"})
	e := message.NewEntry("uid=bob,dc=example")
	e.AppendValue("cn", "Bob")
	require.NoError(t, store.SaveEntry(e, true))

	resp, err := s.handleCompare(compareBody("uid=bob,dc=example", "cn", "Bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.CompareTrue), resp.Children[0].Int64())

	resp, err = s.handleCompare(compareBody("uid=bob,dc=example", "cn", "Someone"))
	require.NoError(t, err)
	assert.Equal(t, int64(ldaperr.CompareFalse), resp.Children[0].Int64())
}
