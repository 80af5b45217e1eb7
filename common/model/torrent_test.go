package model

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"torrent-info/common/bittorrent"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeFmt(t *testing.T) {
	assert.Equal(t, "0.0 B", SizeFmt(0))
	assert.Equal(t, "999.0 B", SizeFmt(999))
	assert.Equal(t, "1.0 KB", SizeFmt(1024))
	assert.Equal(t, "1.5 MB", SizeFmt(1572864))
	assert.Equal(t, "1.0 GB", SizeFmt(1<<30))
	// 1000..1023 bytes already switch to K.
	assert.Equal(t, "1.0 KB", SizeFmt(1000))
	assert.Equal(t, "8.0 EB", SizeFmt(1<<63-1))
}

func sampleInfo() *bittorrent.Info {
	return &bittorrent.Info{
		Name:        "show",
		PieceLength: 1 << 18,
		Pieces:      bytes.Repeat([]byte{7}, 60),
		Files: []*bittorrent.File{
			{Length: 1000, Path: []string{"s01", "e01.mkv"}},
			{Length: 24, Path: []string{"readme.txt"}},
		},
	}
}

func TestNewTorrentMultiFile(t *testing.T) {
	hash := metainfo.NewHashFromHex("c12fe1c06bba254a9dc9f519b335aa7c1367a88a")
	elapsed := 1500 * time.Millisecond
	seeders, peers := 3, 9
	now := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	tor := NewTorrent(&Source{
		Info:         sampleInfo(),
		InfoHash:     hash,
		Trackers:     []string{"udp://t.example:1337"},
		CreationDate: now,
		Elapsed:      &elapsed,
		Seeders:      &seeders,
		Peers:        &peers,
	})

	assert.Equal(t, "c12fe1c06bba254a9dc9f519b335aa7c1367a88a", tor.InfoHash)
	assert.Equal(t, "show", tor.Name)
	assert.Equal(t, int64(1024), tor.TotalSize)
	assert.Equal(t, "1.0 KB", tor.TotalSizeFmt)
	assert.Equal(t, 2, tor.NumFiles)
	assert.Equal(t, 3, tor.NumPieces)
	assert.Equal(t, "show/s01/e01.mkv", tor.Files[0].Path)
	assert.Equal(t, "24.0 B", tor.Files[1].SizeFmt)
	assert.Equal(t, DefaultCreator, tor.Creator)
	assert.Equal(t, now, tor.CreationDate)
	assert.Contains(t, tor.MagnetURI, "xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a")
	if assert.NotNil(t, tor.ElapsedTime) {
		assert.InDelta(t, 1.5, *tor.ElapsedTime, 1e-9)
	}
	assert.Equal(t, 3, *tor.Seeders)
	assert.Equal(t, 9, *tor.Peers)
	assert.True(t, tor.Valid())
}

func TestNewTorrentFromContainer(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	info := &bittorrent.Info{Name: "single.iso", PieceLength: 1 << 20, Pieces: make([]byte, 20), Length: 2048}
	c, err := bittorrent.NewContainer(info, nil, nil, "", now)
	require.NoError(t, err)
	c.CreationDate = time.Time{}
	c.Comment = "hello"

	later := now.Add(time.Hour)
	fallback := []string{"http://fallback.example/announce"}
	tor := NewTorrentFromContainer(c, fallback, later)
	assert.Equal(t, c.InfoHash.HexString(), tor.InfoHash)
	assert.Equal(t, fallback, tor.Trackers)
	assert.Equal(t, later, tor.CreationDate)
	assert.Equal(t, "hello", tor.Comment)
	if assert.Len(t, tor.Files, 1) {
		assert.Equal(t, "single.iso", tor.Files[0].Path)
		assert.Equal(t, int64(2048), tor.Files[0].Size)
	}
	assert.Nil(t, tor.ElapsedTime)
	assert.Nil(t, tor.Seeders)

	c.Announce = "udp://own.example:80"
	c.CreatedBy = "mktorrent 1.1"
	tor = NewTorrentFromContainer(c, fallback, later)
	assert.Equal(t, []string{"udp://own.example:80"}, tor.Trackers)
	assert.Equal(t, "mktorrent 1.1", tor.Creator)
}

func TestTorrentJSON(t *testing.T) {
	info := &bittorrent.Info{Name: "a", PieceLength: 1, Length: 1}
	tor := NewTorrent(&Source{Info: info, CreationDate: time.Unix(0, 0)})
	buf, err := json.Marshal(tor)
	require.NoError(t, err)
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(buf, &m))
	assert.Equal(t, "1970-01-01T00:00:00Z", m["creation_date"])
	assert.NotContains(t, m, "elapsed_time")
	assert.NotContains(t, m, "seeders")
	assert.NotContains(t, m, "comment")
}
