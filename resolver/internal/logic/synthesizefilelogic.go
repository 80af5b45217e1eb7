package logic

import (
	"context"
	"strings"

	"torrent-info/common/bittorrent"
	"torrent-info/common/magnet"
	"torrent-info/common/model"
	"torrent-info/common/pathscrub"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type SynthesizeFileLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewSynthesizeFileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SynthesizeFileLogic {
	return &SynthesizeFileLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// SynthesizeFile fetches a magnet's metadata, skipping any cached result, and
// wraps it in a .torrent file. The result is still written to the cache; a
// failed write is returned alongside the file.
func (l *SynthesizeFileLogic) SynthesizeFile(req *types.MagnetRequest) (*types.TorrentFile, error) {
	p := newFetchParams(l.svcCtx, req)
	d, err := magnet.Parse(req.URI, p.opts.Trackers)
	if err != nil {
		return nil, errors.Trace(err)
	}
	f, err := fetchMagnet(l.ctx, l.svcCtx, l.Logger, d, p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	storeErr := store(l.ctx, l.svcCtx, l.Logger, f.torrent)

	c, err := bittorrent.NewContainer(f.info, f.infoBytes, d.Trackers, model.DefaultCreator, l.svcCtx.Now())
	if err != nil {
		return nil, errors.Trace(err)
	}
	data, err := c.Encode()
	if err != nil {
		return nil, errors.Trace(err)
	}
	name, err := pathscrub.Scrub(f.info.BestName(), l.svcCtx.Convention, true)
	if err != nil {
		l.Infof("Name of %s scrubs to nothing, using the info hash", d.HexHash())
		name = d.HexHash()
	}
	filename := name + ".torrent"
	ret := &types.TorrentFile{
		Data:               data,
		Filename:           filename,
		ContentType:        types.ContentTypeTorrent,
		ContentDisposition: "attachment; filename*=UTF-8''" + encodeRFC5987(filename),
	}
	return ret, errors.Trace(storeErr)
}

const rfc5987AttrChars = "!#$&+-.^_`|~"

// encodeRFC5987 percent-encodes s as an RFC 5987 ext-value.
func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	b := strings.Builder{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || strings.IndexByte(rfc5987AttrChars, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xf])
	}
	return b.String()
}
