package logic

import (
	"context"

	"torrent-info/common/errs"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type CacheMutateLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewCacheMutateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CacheMutateLogic {
	return &CacheMutateLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CacheMutate clears the cache or deletes the given hashes, then reports how
// many entries remain. Deleting absent hashes is not an error.
func (l *CacheMutateLogic) CacheMutate(req *types.CacheMutateRequest) (*types.CacheMutateResponse, error) {
	var err error
	switch req.Op {
	case types.CacheOpClear:
		err = l.svcCtx.Cache.Clear(l.ctx)
	case types.CacheOpDelete:
		err = l.svcCtx.Cache.Delete(l.ctx, splitHashes(req.Hashes)...)
	default:
		return nil, errs.Invalidf("unknown cache operation %q", req.Op)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	n, err := l.svcCtx.Cache.Len(l.ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	l.Infof("Cache %s done, %d entries left", req.Op, n)
	return &types.CacheMutateResponse{Count: n}, nil
}
