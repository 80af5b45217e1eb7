package model

import (
	"time"

	"torrent-info/common/bittorrent"
	"torrent-info/common/magnet"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/anacrolix/torrent/version"
	"github.com/kamva/mgm/v3"
)

// TopicTorrentResolved carries every descriptor written to the cache.
const TopicTorrentResolved = "torrent_resolved"

// DefaultCreator is reported for torrents that do not name their creator.
var DefaultCreator = version.DefaultHttpUserAgent

var _ mgm.Model = (*Torrent)(nil)

type File struct {
	Path    string `bson:"path" json:"path"`
	Size    int64  `bson:"size" json:"size"`
	SizeFmt string `bson:"size_fmt" json:"size_fmt"`
}

// Torrent is the normalized description of a torrent, whichever way it was obtained.
type Torrent struct {
	InfoHash     string    `bson:"_id" json:"info_hash"`
	Name         string    `bson:"name" json:"name"`
	TotalSize    int64     `bson:"total_size" json:"total_size"`
	TotalSizeFmt string    `bson:"total_size_fmt" json:"total_size_fmt"`
	NumFiles     int       `bson:"num_files" json:"num_files"`
	NumPieces    int       `bson:"num_pieces" json:"num_pieces"`
	Files        []*File   `bson:"files" json:"files"`
	Creator      string    `bson:"creator" json:"creator"`
	Comment      string    `bson:"comment,omitempty" json:"comment,omitempty"`
	Trackers     []string  `bson:"trackers" json:"trackers"`
	CreationDate time.Time `bson:"creation_date" json:"creation_date"`
	MagnetURI    string    `bson:"magnet_uri" json:"magnet_uri"`
	ElapsedTime  *float64  `bson:"elapsed_time,omitempty" json:"elapsed_time,omitempty"`
	Seeders      *int      `bson:"seeders,omitempty" json:"seeders,omitempty"`
	Peers        *int      `bson:"peers,omitempty" json:"peers,omitempty"`
}

func (t *Torrent) PrepareID(id interface{}) (interface{}, error) {
	return id, nil
}

func (t *Torrent) GetID() interface{} {
	return t.InfoHash
}

func (t *Torrent) SetID(id interface{}) {
	t.InfoHash = id.(string)
}

// Source is the raw material a Torrent is normalized from.
type Source struct {
	Info         *bittorrent.Info
	InfoHash     metainfo.Hash
	Trackers     []string
	Creator      string
	Comment      string
	CreationDate time.Time
	// Elapsed, Seeders and Peers are only known for exchanged metadata.
	Elapsed *time.Duration
	Seeders *int
	Peers   *int
}

func NewTorrent(src *Source) *Torrent {
	info := src.Info
	name := info.BestName()
	ret := &Torrent{
		InfoHash:     src.InfoHash.HexString(),
		Name:         name,
		NumPieces:    info.NumPieces(),
		Creator:      src.Creator,
		Comment:      src.Comment,
		Trackers:     append(make([]string, 0, len(src.Trackers)), src.Trackers...),
		CreationDate: src.CreationDate.UTC(),
		Seeders:      src.Seeders,
		Peers:        src.Peers,
	}
	if ret.Creator == "" {
		ret.Creator = DefaultCreator
	}
	files := info.UpvertedFiles()
	ret.Files = make([]*File, 0, len(files))
	for _, f := range files {
		path := name
		if info.IsDir() {
			path = name + "/" + f.DisplayPath()
		}
		ret.Files = append(ret.Files, &File{
			Path:    path,
			Size:    f.Length,
			SizeFmt: SizeFmt(f.Length),
		})
		ret.TotalSize += f.Length
	}
	ret.NumFiles = len(ret.Files)
	ret.TotalSizeFmt = SizeFmt(ret.TotalSize)
	ret.MagnetURI = magnet.URI(src.InfoHash, name, ret.Trackers)
	if src.Elapsed != nil {
		secs := src.Elapsed.Seconds()
		ret.ElapsedTime = &secs
	}
	return ret
}

// NewTorrentFromContainer normalizes a parsed .torrent file. fallback is used
// when the file names no trackers and now when it carries no creation date.
func NewTorrentFromContainer(c *bittorrent.Container, fallback []string, now time.Time) *Torrent {
	src := &Source{
		Info:         c.Info,
		InfoHash:     c.InfoHash,
		Trackers:     c.Trackers(),
		Creator:      c.CreatedBy,
		Comment:      c.Comment,
		CreationDate: c.CreationDate,
	}
	if len(src.Trackers) == 0 {
		src.Trackers = fallback
	}
	if src.CreationDate.IsZero() {
		src.CreationDate = now
	}
	return NewTorrent(src)
}

func (t *Torrent) Valid() bool {
	if len(t.InfoHash) == 0 {
		return false
	}
	if len(t.Name) == 0 {
		return false
	}
	var total int64
	for _, f := range t.Files {
		total += f.Size
	}
	return total == t.TotalSize && len(t.Files) == t.NumFiles
}
