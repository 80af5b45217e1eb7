package bittorrent

import "strings"

type File struct {
	Length   int64          `mapstructure:"length" json:"length"`
	Path     []string       `mapstructure:"path" json:"path,omitempty"`
	PathUTF8 []string       `mapstructure:"path.utf-8" json:"-"`
	Other    map[string]any `mapstructure:",remain" json:"-"`
}

// BestPath prefers the utf-8 path when the torrent carries one.
func (f *File) BestPath() []string {
	if len(f.PathUTF8) != 0 {
		return f.PathUTF8
	}
	return f.Path
}

func (f *File) DisplayPath() string {
	return strings.Join(f.BestPath(), "/")
}
