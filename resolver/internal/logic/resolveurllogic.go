package logic

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"torrent-info/common/errs"
	"torrent-info/common/model"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

const maxTorrentFileSize = 16 << 20

type ResolveURLLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewResolveURLLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolveURLLogic {
	return &ResolveURLLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ResolveURL downloads a .torrent file, through the configured proxy if any,
// and resolves it like ResolveFile.
func (l *ResolveURLLogic) ResolveURL(req *types.URLRequest) (*model.Torrent, error) {
	proxyURL := l.svcCtx.Config.HTTPProxy
	if req.HTTPProxy != nil {
		proxyURL = *req.HTTPProxy
	}
	client := l.svcCtx.HTTPClient
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, errs.Wrap(errs.KindInvalid, err, "invalid proxy url")
		}
		client = &http.Client{
			Timeout:   client.Timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(u)},
		}
	}
	httpReq, err := http.NewRequestWithContext(l.ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalid, err, "invalid torrent url")
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnavailable, err, "fetch %s", req.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Unavailablef("fetch %s: %s", req.URL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTorrentFileSize+1))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(data) > maxTorrentFileSize {
		return nil, errs.Invalidf("torrent file at %s is larger than %d bytes", req.URL, maxTorrentFileSize)
	}
	return NewResolveFileLogic(l.ctx, l.svcCtx).ResolveFile(&types.FileRequest{Data: data})
}
