package logic

import (
	"context"

	"torrent-info/common/bittorrent"
	"torrent-info/common/model"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type ResolveFileLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewResolveFileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolveFileLogic {
	return &ResolveFileLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ResolveFile decodes a .torrent file and caches the result.
func (l *ResolveFileLogic) ResolveFile(req *types.FileRequest) (*model.Torrent, error) {
	c, err := bittorrent.ParseContainer(req.Data)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := model.NewTorrentFromContainer(c, l.svcCtx.TrackerList.Get(), l.svcCtx.Now())
	l.svcCtx.MetricResolverEvent.Inc("file_ok")
	err = store(l.ctx, l.svcCtx, l.Logger, t)
	if err != nil {
		return t, errors.Trace(err)
	}
	return t, nil
}
