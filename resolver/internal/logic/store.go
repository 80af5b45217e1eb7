package logic

import (
	"context"
	"encoding/json"

	"torrent-info/common/model"
	"torrent-info/resolver/internal/svc"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

// store writes t through to the cache and announces it. Only the cache error
// is returned; the caller keeps t either way.
func store(ctx context.Context, svcCtx *svc.ServiceContext, logger logx.Logger, t *model.Torrent) error {
	err := svcCtx.Cache.Set(ctx, t)
	if err != nil {
		logger.Errorf("Failed to cache torrent %s %s: %+v", t.InfoHash, t.Name, err)
		svcCtx.MetricResolverEvent.Inc("cache_write_fail")
		return errors.Trace(err)
	}
	publish(svcCtx, logger, t)
	return nil
}

func publish(svcCtx *svc.ServiceContext, logger logx.Logger, t *model.Torrent) {
	if svcCtx.Publisher == nil {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		logger.Errorf("Failed to marshal torrent: %+v", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	err = svcCtx.Publisher.Publish(model.TopicTorrentResolved, msg)
	if err != nil {
		logger.Errorf("Failed to publish resolved torrent %s %s: %+v", t.InfoHash, t.Name, err)
		svcCtx.MetricResolverEvent.Inc("publish_fail")
	}
}
