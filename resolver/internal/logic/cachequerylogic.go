package logic

import (
	"context"
	"strings"

	"torrent-info/common/cache"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type CacheQueryLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewCacheQueryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CacheQueryLogic {
	return &CacheQueryLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *CacheQueryLogic) CacheQuery(req *types.CacheQueryRequest) (*types.CacheQueryResponse, error) {
	filter := &cache.Filter{
		Name:   req.Name,
		Hashes: splitHashes(req.Hashes),
	}
	entries, total, err := l.svcCtx.Cache.List(l.ctx, filter, req.Page)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &types.CacheQueryResponse{
		Entries: entries,
		Total:   total,
	}, nil
}

// splitHashes accepts both repeated values and comma separated lists.
func splitHashes(in []string) []string {
	ret := make([]string, 0, len(in))
	for _, s := range in {
		for _, h := range strings.Split(s, ",") {
			if h = strings.TrimSpace(h); h != "" {
				ret = append(ret, h)
			}
		}
	}
	return ret
}
