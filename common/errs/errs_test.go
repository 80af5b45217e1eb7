package errs

import (
	"errors"
	"io"
	"testing"

	jujuerrors "github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := Parsef("bad token at %d", 3)
	assert.Equal(t, KindParse, KindOf(err))
	assert.True(t, IsKind(err, KindParse))
	assert.False(t, IsKind(err, KindTimeout))
	assert.Contains(t, err.Error(), "ParseError: bad token at 3")

	traced := jujuerrors.Trace(err)
	assert.True(t, IsKind(traced, KindParse))
	assert.False(t, IsKind(nil, KindParse))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(KindCache, nil, "noop"))

	err := Wrap(KindCache, io.ErrUnexpectedEOF, "read %s", "abc")
	assert.True(t, IsKind(err, KindCache))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, &Error{Kind: KindCache}))
	assert.False(t, errors.Is(err, &Error{Kind: KindTimeout}))
}
