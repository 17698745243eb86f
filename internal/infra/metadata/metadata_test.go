package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverwriteKeepsLastWrite(t *testing.T) {
	key := NewKey[int]("priority")
	s := NewStore("M")

	Set(s, key, 1)
	Set(s, key, 1000)

	v, ok := Get(s, key)
	require.True(t, ok)
	assert.Equal(t, 1000, v)
	assert.Equal(t, Overwrite, key.Strategy())
}

func TestAppendKeepsWriteOrder(t *testing.T) {
	key := NewListKey[string]("routes")
	s := NewStore("C")

	Set(s, key, []string{"GET /a"})
	Set(s, key, []string{"POST /b", "PUT /c"})

	v, ok := Get(s, key)
	require.True(t, ok)
	assert.Equal(t, []string{"GET /a", "POST /b", "PUT /c"}, v)
}

func TestUpsertReplacesEntries(t *testing.T) {
	key := NewMapKey[string, string]("handlers")
	s := NewStore("C")

	Set(s, key, map[string]string{"GET": "list", "POST": "create"})
	Set(s, key, map[string]string{"GET": "index"})

	v, ok := Get(s, key)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"GET": "index", "POST": "create"}, v)
}

func TestGetMissingKey(t *testing.T) {
	s := NewStore("X")
	v, ok := Get(s, NewKey[string]("nope"))
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.False(t, Has(s, NewKey[string]("nope")))
}

func TestKeysAreIdentities(t *testing.T) {
	a := NewKey[int]("same")
	b := NewKey[int]("same")
	s := NewStore("X")

	Set(s, a, 1)
	assert.True(t, Has(s, a))
	assert.False(t, Has(s, b))
}

func TestStoresAreIndependent(t *testing.T) {
	key := NewListKey[int]("n")
	parent, child := NewStore("Parent"), NewStore("Child")

	Set(parent, key, []int{1})
	_, ok := Get(child, key)
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	key := NewListKey[int]("n")
	s := NewStore("X")
	Set(s, key, []int{1, 2})

	v, _ := Get(s, key)
	v[0] = 99

	again, _ := Get(s, key)
	assert.Equal(t, []int{1, 2}, again)
}

func TestSealedStorePanicsOnWrite(t *testing.T) {
	key := NewKey[bool]("controller")
	s := NewStore("X")
	Set(s, key, true)
	s.Seal()

	assert.True(t, s.Sealed())
	assert.Panics(t, func() { Set(s, key, false) })
	v, _ := Get(s, key)
	assert.True(t, v)
	assert.Equal(t, []string{"controller"}, s.Keys())
}
