// Package exchange pulls info dictionaries for magnet links from the swarm
// without transferring any payload.
package exchange

import (
	"torrent-info/common/magnet"

	"github.com/anacrolix/torrent/metainfo"
)

// Options configures one exchange session.
type Options struct {
	UseDHT bool
	// Trackers are announced to when the magnet names none.
	Trackers []string
	// HTTPProxy is an http, https or socks5 URL, optionally with credentials.
	HTTPProxy string
}

// SessionFactory opens sessions. Implementations return an Unavailable error
// when the engine cannot start.
type SessionFactory interface {
	NewSession(opts Options) (Session, error)
}

// Session owns every network resource of one resolution. Release must be
// called on every exit path and may be called more than once.
type Session interface {
	AddMagnet(d *magnet.Descriptor) (Handle, error)
	Release() error
}

// Handle is the pending exchange for one info hash.
type Handle interface {
	InfoHash() metainfo.Hash
	// GotMetadata is closed once the info dictionary is available.
	GotMetadata() <-chan struct{}
	HasMetadata() bool
	// Metadata returns the raw bencoded info dictionary.
	Metadata() ([]byte, error)
	// Swarm reports connected seeders and peers, negative when unknown.
	Swarm() (seeders, peers int)
	ForceDHTAnnounce()
}
