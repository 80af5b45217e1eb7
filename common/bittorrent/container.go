package bittorrent

import (
	"time"

	"torrent-info/common/bencode"
	"torrent-info/common/errs"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/juju/errors"
)

// Container is a parsed or synthesised .torrent file.
type Container struct {
	Info         *Info
	InfoBytes    []byte
	InfoHash     metainfo.Hash
	Announce     string
	AnnounceList [][]string
	// CreationDate is zero when the file carries none.
	CreationDate time.Time
	CreatedBy    string
	Comment      string
	Encoding     string
}

// ParseContainer decodes a .torrent file. The info hash is computed over the
// exact bytes of the info value as they appear in buf.
func ParseContainer(buf []byte) (*Container, error) {
	root, err := bencode.DecodeDict(buf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !bencode.CheckMapPath(root, "info") {
		return nil, errs.Parsef("torrent file has no info dictionary")
	}
	infoBytes, err := bencode.RawValue(buf, "info")
	if err != nil {
		return nil, errors.Trace(err)
	}
	info, err := ParseInfo(infoBytes)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c := &Container{
		Info:      info,
		InfoBytes: append([]byte(nil), infoBytes...),
		InfoHash:  metainfo.HashBytes(infoBytes),
	}
	c.Announce, _ = bencode.GetString(root, "announce")
	c.CreatedBy, _ = bencode.GetString(root, "created by")
	c.Comment, _ = bencode.GetString(root, "comment")
	c.Encoding, _ = bencode.GetString(root, "encoding")
	if ts, ok := bencode.GetInt(root, "creation date"); ok && ts > 0 {
		c.CreationDate = time.Unix(ts, 0).UTC()
	}
	if tiers, ok := bencode.GetList(root, "announce-list"); ok {
		for _, tier := range tiers {
			urls, ok := tier.([]any)
			if !ok {
				return nil, errs.Parsef("announce-list tier is not a list")
			}
			list := make([]string, 0, len(urls))
			for _, u := range urls {
				b, ok := u.([]byte)
				if !ok {
					return nil, errs.Parsef("announce-list entry is not a string")
				}
				list = append(list, string(b))
			}
			c.AnnounceList = append(c.AnnounceList, list)
		}
	}
	return c, nil
}

// NewContainer builds a container around info. When infoBytes is non-empty it
// is embedded verbatim and must decode to info; otherwise info is encoded.
func NewContainer(info *Info, infoBytes []byte, trackers []string, createdBy string, now time.Time) (*Container, error) {
	if len(infoBytes) == 0 {
		var err error
		infoBytes, err = info.Encode()
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	c := &Container{
		Info:         info,
		InfoBytes:    infoBytes,
		InfoHash:     metainfo.HashBytes(infoBytes),
		CreationDate: now.UTC().Truncate(time.Second),
		CreatedBy:    createdBy,
	}
	if len(trackers) > 0 {
		c.Announce = trackers[0]
		for _, tr := range trackers {
			c.AnnounceList = append(c.AnnounceList, []string{tr})
		}
	}
	return c, nil
}

// Trackers flattens announce-list tiers followed by announce, dropping repeats.
func (c *Container) Trackers() []string {
	seen := make(map[string]struct{})
	ret := make([]string, 0)
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		ret = append(ret, u)
	}
	for _, tier := range c.AnnounceList {
		for _, u := range tier {
			add(u)
		}
	}
	add(c.Announce)
	return ret
}

// Encode serialises the container with the info dictionary spliced in as-is.
func (c *Container) Encode() ([]byte, error) {
	if len(c.InfoBytes) == 0 {
		return nil, errs.Invalidf("container has no info dictionary")
	}
	d := map[string]any{
		"info": bencode.Raw(c.InfoBytes),
	}
	if c.Announce != "" {
		d["announce"] = c.Announce
	}
	if len(c.AnnounceList) > 0 {
		d["announce-list"] = c.AnnounceList
	}
	if !c.CreationDate.IsZero() {
		d["creation date"] = c.CreationDate.Unix()
	}
	if c.CreatedBy != "" {
		d["created by"] = c.CreatedBy
	}
	if c.Comment != "" {
		d["comment"] = c.Comment
	}
	if c.Encoding != "" {
		d["encoding"] = c.Encoding
	}
	ret, err := bencode.Encode(d)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ret, nil
}
