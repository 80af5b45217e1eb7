package logic

import (
	"context"

	"torrent-info/common/magnet"
	"torrent-info/common/model"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type ResolveMagnetLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewResolveMagnetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolveMagnetLogic {
	return &ResolveMagnetLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ResolveMagnet returns the cached torrent for the magnet's info hash, or
// fetches its metadata from the swarm and caches it. When only the cache
// write fails the torrent is returned together with the error.
func (l *ResolveMagnetLogic) ResolveMagnet(req *types.MagnetRequest) (*model.Torrent, error) {
	p := newFetchParams(l.svcCtx, req)
	d, err := magnet.Parse(req.URI, p.opts.Trackers)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !req.BypassCache {
		cached, err := l.svcCtx.Cache.Get(l.ctx, d.HexHash())
		if err != nil {
			return nil, errors.Trace(err)
		}
		if cached != nil {
			l.svcCtx.MetricResolverEvent.Inc("cache_hit")
			l.Debugf("Cache hit for %s", d.HexHash())
			return cached, nil
		}
		l.svcCtx.MetricResolverEvent.Inc("cache_miss")
	}
	f, err := fetchMagnet(l.ctx, l.svcCtx, l.Logger, d, p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	err = store(l.ctx, l.svcCtx, l.Logger, f.torrent)
	if err != nil {
		return f.torrent, errors.Trace(err)
	}
	return f.torrent, nil
}
