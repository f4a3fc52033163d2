package storage

import (
	"testing"

	"github.com/obadir/obad/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntry(dn string) *message.Entry {
	e := message.NewEntry(dn)
	e.AppendValue("objectClass", "person")
	return e
}

func TestMemorySaveFindRoundTrip(t *testing.T) {
	m := NewMemory(nil)
	require.NoError(t, m.SaveEntry(seedEntry("uid=alice,dc=example"), true))

	got, err := m.FindEntry("UID=Alice,DC=Example")
	require.NoError(t, err)
	assert.Equal(t, "uid=alice,dc=example", got.DN)
}

func TestMemorySaveInsertRejectsExisting(t *testing.T) {
	m := NewMemory(nil)
	require.NoError(t, m.SaveEntry(seedEntry("uid=alice,dc=example"), true))
	assert.Error(t, m.SaveEntry(seedEntry("uid=alice,dc=example"), true))
}

func TestMemoryDeleteRemovesSubtree(t *testing.T) {
	m := NewMemory(nil)
	require.NoError(t, m.SaveEntry(seedEntry("ou=people,dc=example"), true))
	require.NoError(t, m.SaveEntry(seedEntry("uid=alice,ou=people,dc=example"), true))

	require.NoError(t, m.DeleteEntry("ou=people,dc=example"))

	_, err := m.FindEntry("ou=people,dc=example")
	assert.Error(t, err)
	_, err = m.FindEntry("uid=alice,ou=people,dc=example")
	assert.Error(t, err)
}

func TestMemoryFindEntriesOneScopeExcludesGrandchildren(t *testing.T) {
	m := NewMemory(nil)
	require.NoError(t, m.SaveEntry(seedEntry("ou=people,dc=example"), true))
	require.NoError(t, m.SaveEntry(seedEntry("uid=alice,ou=people,dc=example"), true))
	require.NoError(t, m.SaveEntry(seedEntry("cn=sub,uid=alice,ou=people,dc=example"), true))

	cur, err := m.FindEntries(message.SearchRequest{Base: "ou=people,dc=example", Scope: message.ScopeOne})
	require.NoError(t, err)

	var dns []string
	for {
		e, err := cur.Next()
		require.NoError(t, err)
		if e == nil {
			break
		}
		dns = append(dns, e.DN)
	}
	assert.Equal(t, []string{"uid=alice,ou=people,dc=example"}, dns)
}

func TestMemoryLookupGroupChecksMemberAttribute(t *testing.T) {
	m := NewMemory(nil)
	group := message.NewEntry("cn=admins,dc=example")
	group.AppendValue("member", "uid=alice,dc=example")
	require.NoError(t, m.SaveEntry(group, true))

	ok, err := m.LookupGroup("cn=admins,dc=example", "member", "uid=alice,dc=example")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.LookupGroup("cn=admins,dc=example", "member", "uid=bob,dc=example")
	require.NoError(t, err)
	assert.False(t, ok)
}
