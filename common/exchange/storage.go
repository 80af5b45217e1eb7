package exchange

import (
	"context"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/anacrolix/torrent/storage"
	"github.com/juju/errors"
)

var errNoPayload = errors.New("payload storage is disabled for metadata exchange")

// metadataOnly is a storage.ClientImpl with zero capacity. Pieces can be
// neither read nor written, so the client never keeps payload bytes.
type metadataOnly struct{}

var _ storage.ClientImpl = metadataOnly{}

func (metadataOnly) OpenTorrent(_ context.Context, _ *metainfo.Info, _ metainfo.Hash) (storage.TorrentImpl, error) {
	capFunc := func() (int64, bool) {
		return 0, true
	}
	return storage.TorrentImpl{
		Piece: func(metainfo.Piece) storage.PieceImpl {
			return noPiece{}
		},
		Close: func() error {
			return nil
		},
		Capacity: &capFunc,
	}, nil
}

type noPiece struct{}

func (noPiece) ReadAt([]byte, int64) (int, error) {
	return 0, errNoPayload
}

func (noPiece) WriteAt([]byte, int64) (int, error) {
	return 0, errNoPayload
}

func (noPiece) MarkComplete() error {
	return errNoPayload
}

func (noPiece) MarkNotComplete() error {
	return errNoPayload
}

func (noPiece) Completion() storage.Completion {
	return storage.Completion{Ok: true, Complete: false}
}
