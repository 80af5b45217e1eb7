// Package magnet turns magnet URIs and bare info hashes into descriptors.
package magnet

import (
	"net/url"
	"strings"

	"torrent-info/common/errs"

	"github.com/anacrolix/torrent/metainfo"
)

const (
	scheme     = "magnet:"
	btihPrefix = "magnet:?xt=urn:btih:"
)

// Descriptor is everything a magnet URI says about a torrent. It is derived
// purely from the URI string.
type Descriptor struct {
	InfoHash    metainfo.Hash
	DisplayName string
	Trackers    []string
	Params      url.Values
}

// Normalize rewrites a bare hex or base32 info hash into a minimal magnet URI.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), scheme) {
		return s
	}
	return btihPrefix + s
}

// Parse normalizes s and extracts its info hash, display name and trackers.
// Tracker order and duplicates are kept as given; when the URI names no
// trackers the descriptor adopts a copy of fallback.
func Parse(s string, fallback []string) (*Descriptor, error) {
	uri := Normalize(s)
	m, err := metainfo.ParseMagnetUri(uri)
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, err, "invalid magnet uri %q", s)
	}
	d := &Descriptor{
		InfoHash:    m.InfoHash,
		DisplayName: m.DisplayName,
		Trackers:    m.Trackers,
		Params:      m.Params,
	}
	if len(d.Trackers) == 0 {
		d.Trackers = append([]string(nil), fallback...)
	}
	return d, nil
}

func (d *Descriptor) HexHash() string {
	return d.InfoHash.HexString()
}

// String renders the canonical magnet URI for d.
func (d *Descriptor) String() string {
	return URI(d.InfoHash, d.DisplayName, d.Trackers)
}

// URI renders the canonical magnet URI for a hash, name and tracker list.
func URI(infoHash metainfo.Hash, name string, trackers []string) string {
	return metainfo.Magnet{
		InfoHash:    infoHash,
		DisplayName: name,
		Trackers:    trackers,
	}.String()
}
