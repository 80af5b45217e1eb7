package bittorrent

import (
	"bytes"
	"crypto/sha1"
	"testing"
	"time"

	"torrent-info/common/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiFileInfo() *Info {
	return &Info{
		Name:        "album",
		PieceLength: 16384,
		Pieces:      bytes.Repeat([]byte{0xab}, 40),
		Files: []*File{
			{Length: 100, Path: []string{"cd1", "01.flac"}},
			{Length: 250, Path: []string{"cover.jpg"}},
		},
	}
}

func TestParseContainerHashesRawInfo(t *testing.T) {
	info := []byte("d6:lengthi5e4:name5:a.txt12:piece lengthi16384e6:pieces20:" + string(bytes.Repeat([]byte{1}, 20)) + "e")
	buf := []byte("d8:announce20:http://t.example/ann13:creation datei1700000000e4:info" + string(info) + "e")
	c, err := ParseContainer(buf)
	require.NoError(t, err)
	assert.Equal(t, sha1.Sum(info), [20]byte(c.InfoHash))
	assert.Equal(t, "a.txt", c.Info.BestName())
	assert.Equal(t, int64(5), c.Info.TotalLength())
	assert.Equal(t, 1, c.Info.NumPieces())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), c.CreationDate)
	assert.Equal(t, []string{"http://t.example/ann"}, c.Trackers())
}

func TestParseContainerRequiresInfo(t *testing.T) {
	_, err := ParseContainer([]byte("d8:announce3:abce"))
	assert.True(t, errs.IsKind(err, errs.KindParse))

	_, err = ParseContainer([]byte("d4:infoi3ee"))
	assert.True(t, errs.IsKind(err, errs.KindParse))

	_, err = ParseContainer([]byte("not bencode"))
	assert.True(t, errs.IsKind(err, errs.KindParse))
}

func TestContainerRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewContainer(multiFileInfo(), nil, []string{"udp://a.example:80", "http://b.example/announce"}, "tester", now)
	require.NoError(t, err)
	first, err := c.Encode()
	require.NoError(t, err)

	decoded, err := ParseContainer(first)
	require.NoError(t, err)
	second, err := decoded.Encode()
	require.NoError(t, err)
	again, err := ParseContainer(second)
	require.NoError(t, err)

	assert.Equal(t, c.InfoHash, decoded.InfoHash)
	assert.Equal(t, decoded.InfoHash, again.InfoHash)
	assert.Equal(t, "album", again.Info.BestName())
	if assert.Len(t, again.Info.Files, 2) {
		assert.Equal(t, "cd1/01.flac", again.Info.Files[0].DisplayPath())
		assert.Equal(t, int64(250), again.Info.Files[1].Length)
	}
	assert.Equal(t, int64(350), again.Info.TotalLength())
	assert.Equal(t, now, again.CreationDate)
	assert.Equal(t, "tester", again.CreatedBy)
	assert.Equal(t, [][]string{{"udp://a.example:80"}, {"http://b.example/announce"}}, again.AnnounceList)
	assert.Equal(t, first, second)
}

func TestContainerKeepsUnknownInfoKeys(t *testing.T) {
	// Keys unknown to Info still take part in the hash.
	info := []byte("d6:lengthi1e4:name1:x12:piece lengthi1e6:pieces0:4:zzzzi9ee")
	buf := append(append([]byte("d4:info"), info...), 'e')
	c, err := ParseContainer(buf)
	require.NoError(t, err)
	assert.Equal(t, sha1.Sum(info), [20]byte(c.InfoHash))
	assert.Contains(t, c.Info.Other, "zzzz")

	out, err := c.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

func TestContainerTrackersDedup(t *testing.T) {
	c := &Container{
		Announce:     "http://a",
		AnnounceList: [][]string{{"http://a", "http://b"}, {"http://b", "http://c"}},
	}
	assert.Equal(t, []string{"http://a", "http://b", "http://c"}, c.Trackers())
	assert.Empty(t, (&Container{}).Trackers())
}

func TestParseInfoRejectsBadPieces(t *testing.T) {
	_, err := ParseInfo([]byte("d6:lengthi1e4:name1:x12:piece lengthi1e6:pieces3:abce"))
	assert.True(t, errs.IsKind(err, errs.KindParse))
	_, err = ParseInfo([]byte("d6:lengthi1e12:piece lengthi1e6:pieces0:e"))
	assert.True(t, errs.IsKind(err, errs.KindParse))
}

func TestInfoUpvertedFiles(t *testing.T) {
	single := &Info{Name: "a", Length: 7}
	assert.False(t, single.IsDir())
	assert.Len(t, single.UpvertedFiles(), 1)
	assert.Equal(t, int64(7), single.TotalLength())

	multi := multiFileInfo()
	assert.True(t, multi.IsDir())
	assert.Equal(t, 2, multi.NumPieces())

	utf := &File{Path: []string{"a"}, PathUTF8: []string{"b", "c"}}
	assert.Equal(t, "b/c", utf.DisplayPath())
}
