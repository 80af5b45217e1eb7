package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckMapPath(t *testing.T) {
	m, err := DecodeDict([]byte("d3:bard3:baz6:foobare3:foo3:bare"))
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, CheckMapPath(m, "foo"))
	assert.False(t, CheckMapPath(m, "baz"))
	assert.True(t, CheckMapPath(m, "bar"))
	assert.True(t, CheckMapPath(m, "bar.baz"))
	assert.False(t, CheckMapPath(m, "bar.foo"))
}

func TestGetters(t *testing.T) {
	m, err := DecodeDict([]byte("d1:ai7e1:bl1:xe1:cd1:di1ee10:name.utf-82:oke"))
	if !assert.NoError(t, err) {
		return
	}
	i, ok := GetInt(m, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
	_, ok = GetString(m, "a")
	assert.False(t, ok)
	l, ok := GetList(m, "b")
	assert.True(t, ok)
	assert.Len(t, l, 1)
	assert.True(t, CheckMapPath(m, "c"))
	i, ok = GetInt(m, "c.d")
	assert.True(t, ok)
	assert.Equal(t, int64(1), i)
	s, ok := GetString(m, "name.utf-8")
	assert.True(t, ok)
	assert.Equal(t, "ok", s)
}

func TestToPlain(t *testing.T) {
	v, err := Decode([]byte("d1:ald1:bi1eeee"))
	if !assert.NoError(t, err) {
		return
	}
	plain := ToPlain(v).(map[string]any)
	inner := plain["a"].([]any)[0].(map[string]any)
	assert.Equal(t, int64(1), inner["b"])
}
