package logic

import (
	"context"
	"time"

	"torrent-info/common/bittorrent"
	"torrent-info/common/errs"
	"torrent-info/common/exchange"
	"torrent-info/common/magnet"
	"torrent-info/common/model"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type fetchParams struct {
	opts    exchange.Options
	timeout time.Duration
	nTry    int
}

func newFetchParams(svcCtx *svc.ServiceContext, req *types.MagnetRequest) *fetchParams {
	c := svcCtx.Config
	p := &fetchParams{
		opts: exchange.Options{
			UseDHT:    c.UseDHT,
			Trackers:  svcCtx.TrackerList.Get(),
			HTTPProxy: c.HTTPProxy,
		},
		timeout: c.TimeoutDuration(),
		nTry:    c.NTry,
	}
	if req.UseDHT != nil {
		p.opts.UseDHT = *req.UseDHT
	}
	if req.Trackers != nil {
		p.opts.Trackers = append([]string(nil), (*req.Trackers)...)
	}
	if req.HTTPProxy != nil {
		p.opts.HTTPProxy = *req.HTTPProxy
	}
	if req.Timeout != nil {
		p.timeout = time.Duration(*req.Timeout) * time.Second
	}
	if req.NTry != nil {
		p.nTry = *req.NTry
	}
	return p
}

// fetched is a magnet resolved over the network.
type fetched struct {
	descriptor *magnet.Descriptor
	info       *bittorrent.Info
	infoBytes  []byte
	torrent    *model.Torrent
}

// fetchMagnet runs one exchange session for d. The session is released
// before fetchMagnet returns, whatever the outcome.
func fetchMagnet(ctx context.Context, svcCtx *svc.ServiceContext, logger logx.Logger, d *magnet.Descriptor, p *fetchParams) (*fetched, error) {
	session, err := svcCtx.SessionFactory.NewSession(p.opts)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.Wrap(errs.KindUnavailable, err, "failed to open exchange session")
		}
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := session.Release(); err != nil {
			logger.Errorf("Failed to release exchange session for %s: %+v", d.HexHash(), err)
		}
	}()
	h, err := session.AddMagnet(d)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnavailable, err, "failed to add %s", d.HexHash())
	}
	res, err := exchange.Retrieve(ctx, h, p.timeout, p.nTry)
	if err != nil {
		if errs.IsKind(err, errs.KindTimeout) {
			svcCtx.MetricResolverEvent.Inc("exchange_timeout")
		}
		return nil, errors.Trace(err)
	}
	if metainfo.HashBytes(res.InfoBytes) != d.InfoHash {
		return nil, errs.Parsef("metadata received for %s does not match its info hash", d.HexHash())
	}
	info, err := bittorrent.ParseInfo(res.InfoBytes)
	if err != nil {
		return nil, errors.Trace(err)
	}
	svcCtx.MetricResolverEvent.Inc("exchange_ok")
	logger.Infof("Got metadata for %s after %d attempts in %s", d.HexHash(), res.Attempts, res.Elapsed)
	elapsed := res.Elapsed
	return &fetched{
		descriptor: d,
		info:       info,
		infoBytes:  res.InfoBytes,
		torrent: model.NewTorrent(&model.Source{
			Info:         info,
			InfoHash:     d.InfoHash,
			Trackers:     d.Trackers,
			CreationDate: svcCtx.Now(),
			Elapsed:      &elapsed,
			Seeders:      res.Seeders,
			Peers:        res.Peers,
		}),
	}, nil
}
