package bittorrent

import (
	"reflect"
	"strings"

	"torrent-info/common/bencode"
	"torrent-info/common/errs"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
)

const pieceHashLen = 20

// Info is the decoded info dictionary of a v1 torrent.
type Info struct {
	Name        string         `mapstructure:"name" json:"name"`
	NameUTF8    string         `mapstructure:"name.utf-8" json:"-"`
	PieceLength int64          `mapstructure:"piece length" json:"piece_length"`
	Pieces      []byte         `mapstructure:"pieces" json:"-"`
	Length      int64          `mapstructure:"length" json:"length,omitempty"`
	Files       []*File        `mapstructure:"files" json:"files,omitempty"`
	Private     bool           `mapstructure:"private" json:"private,omitempty"`
	Source      string         `mapstructure:"source" json:"source,omitempty"`
	Other       map[string]any `mapstructure:",remain" json:"-"`
}

// ParseInfo decodes the raw bencoded info dictionary.
func ParseInfo(infoBytes []byte) (*Info, error) {
	dict, err := bencode.DecodeDict(infoBytes)
	if err != nil {
		return nil, errors.Trace(err)
	}
	info := &Info{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           info,
		DecodeHook: func(src reflect.Kind, target reflect.Kind, from interface{}) (interface{}, error) {
			if target == reflect.String {
				switch v := from.(type) {
				case []byte:
					return strings.ToValidUTF8(string(v), ""), nil
				case string:
					return strings.ToValidUTF8(v, ""), nil
				}
			}
			return from, nil
		},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	err = decoder.Decode(bencode.ToPlain(dict))
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, err, "malformed info dictionary")
	}
	if err = info.validate(); err != nil {
		return nil, err
	}
	return info, nil
}

func (info *Info) validate() error {
	if info.BestName() == "" {
		return errs.Parsef("info dictionary has no name")
	}
	if info.PieceLength <= 0 {
		return errs.Parsef("info dictionary has invalid piece length %d", info.PieceLength)
	}
	if len(info.Pieces)%pieceHashLen != 0 {
		return errs.Parsef("pieces length %d is not a multiple of %d", len(info.Pieces), pieceHashLen)
	}
	if info.Length < 0 {
		return errs.Parsef("negative length")
	}
	for _, f := range info.Files {
		if f.Length < 0 {
			return errs.Parsef("negative file length")
		}
	}
	return nil
}

func (info *Info) BestName() string {
	if info.NameUTF8 != "" {
		return info.NameUTF8
	}
	return info.Name
}

func (info *Info) IsDir() bool {
	return len(info.Files) != 0
}

// UpvertedFiles returns Files, or a single entry with a nil path for
// single-file torrents.
func (info *Info) UpvertedFiles() []*File {
	if len(info.Files) == 0 {
		return []*File{{Length: info.Length}}
	}
	return info.Files
}

func (info *Info) TotalLength() (ret int64) {
	for _, f := range info.UpvertedFiles() {
		ret += f.Length
	}
	return
}

func (info *Info) NumPieces() int {
	return len(info.Pieces) / pieceHashLen
}

// Encode produces the canonical info dictionary. Only the fields known to Info
// are written, so hashes are only stable for infos built by this package; keep
// the original bytes when re-serialising a parsed torrent.
func (info *Info) Encode() ([]byte, error) {
	d := map[string]any{
		"name":         info.Name,
		"piece length": info.PieceLength,
		"pieces":       info.Pieces,
	}
	if info.NameUTF8 != "" {
		d["name.utf-8"] = info.NameUTF8
	}
	if info.IsDir() {
		files := make([]any, 0, len(info.Files))
		for _, f := range info.Files {
			fd := map[string]any{
				"length": f.Length,
				"path":   f.Path,
			}
			if len(f.PathUTF8) != 0 {
				fd["path.utf-8"] = f.PathUTF8
			}
			files = append(files, fd)
		}
		d["files"] = files
	} else {
		d["length"] = info.Length
	}
	if info.Private {
		d["private"] = int64(1)
	}
	if info.Source != "" {
		d["source"] = info.Source
	}
	ret, err := bencode.Encode(d)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ret, nil
}
