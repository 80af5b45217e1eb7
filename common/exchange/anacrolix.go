package exchange

import (
	stderrors "errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"torrent-info/common/errs"
	"torrent-info/common/magnet"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

const anonymousUserAgent = "curl/7.81.0"

// Engine opens metadata-only sessions on anacrolix/torrent. Every session gets
// its own client and temporary data directory under TempDir.
type Engine struct {
	TempDir string
}

var _ SessionFactory = (*Engine)(nil)

func NewEngine(tempDir string) *Engine {
	return &Engine{TempDir: tempDir}
}

func (e *Engine) NewSession(opts Options) (Session, error) {
	dir, err := os.MkdirTemp(e.TempDir, "torrent-info-")
	if err != nil {
		return nil, errs.Wrap(errs.KindUnavailable, err, "failed to create session directory")
	}
	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = dir
	cfg.DefaultStorage = metadataOnly{}
	cfg.NoUpload = true
	cfg.Seed = false
	cfg.ListenPort = 0
	cfg.NoDHT = !opts.UseDHT
	cfg.DisablePEX = false
	cfg.NoDefaultPortForwarding = true
	s := &session{
		dir:      dir,
		trackers: opts.Trackers,
	}
	var dialer *peerDialer
	if opts.HTTPProxy != "" {
		u, d, err := ParseProxy(opts.HTTPProxy)
		if err != nil {
			os.RemoveAll(dir)
			return nil, errors.Trace(err)
		}
		// Only TCP traverses the proxy.
		cfg.NoDHT = true
		cfg.DisableUTP = true
		cfg.DisableTCP = true
		cfg.AcceptPeerConnections = false
		cfg.HTTPProxy = http.ProxyURL(u)
		cfg.HTTPUserAgent = anonymousUserAgent
		cfg.ExtendedHandshakeClientVersion = ""
		cfg.Bep20 = ""
		dialer = &peerDialer{d: d}
		s.proxied = true
	}
	s.client, err = torrent.NewClient(cfg)
	if err != nil {
		os.RemoveAll(dir)
		return nil, errs.Wrap(errs.KindUnavailable, err, "failed to start torrent client")
	}
	if dialer != nil {
		s.client.AddDialer(dialer)
	}
	return s, nil
}

type session struct {
	client   *torrent.Client
	dir      string
	trackers []string
	proxied  bool

	mu       sync.Mutex
	handle   *handle
	released bool
}

func (s *session) AddMagnet(d *magnet.Descriptor) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, errors.New("session already released")
	}
	if s.handle != nil {
		return nil, errors.New("session already has a pending exchange")
	}
	trackers := d.Trackers
	if len(trackers) == 0 {
		trackers = s.trackers
	}
	if s.proxied {
		trackers = tcpTrackers(trackers)
	}
	spec := &torrent.TorrentSpec{
		DisplayName:          d.DisplayName,
		DisallowDataDownload: true,
		DisallowDataUpload:   true,
	}
	spec.InfoHash = d.InfoHash
	for _, tr := range trackers {
		spec.Trackers = append(spec.Trackers, []string{tr})
	}
	t, _, err := s.client.AddTorrentSpec(spec)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.handle = &handle{t: t, client: s.client}
	return s.handle, nil
}

func (s *session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	var ret []error
	if s.handle != nil {
		s.handle.stopAnnounces()
		s.handle.t.Drop()
	}
	ret = append(ret, s.client.Close()...)
	if err := os.RemoveAll(s.dir); err != nil {
		ret = append(ret, err)
	}
	return errors.Trace(stderrors.Join(ret...))
}

type handle struct {
	t      *torrent.Torrent
	client *torrent.Client

	mu    sync.Mutex
	stops []func()
}

func (h *handle) InfoHash() metainfo.Hash {
	return h.t.InfoHash()
}

func (h *handle) GotMetadata() <-chan struct{} {
	return h.t.GotInfo()
}

func (h *handle) HasMetadata() bool {
	return h.t.Info() != nil
}

func (h *handle) Metadata() ([]byte, error) {
	if !h.HasMetadata() {
		return nil, errors.New("metadata not available yet")
	}
	mi := h.t.Metainfo()
	return mi.InfoBytes, nil
}

func (h *handle) Swarm() (int, int) {
	stats := h.t.Stats()
	return stats.ConnectedSeeders, stats.ActivePeers
}

func (h *handle) ForceDHTAnnounce() {
	for _, s := range h.client.DhtServers() {
		_, stop, err := h.t.AnnounceToDht(s)
		if err != nil {
			logx.Debugf("DHT announce for %s failed: %v", h.t.InfoHash().HexString(), err)
			continue
		}
		h.mu.Lock()
		h.stops = append(h.stops, stop)
		h.mu.Unlock()
	}
}

func (h *handle) stopAnnounces() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, stop := range h.stops {
		stop()
	}
	h.stops = nil
}

func tcpTrackers(trackers []string) []string {
	ret := make([]string, 0, len(trackers))
	for _, tr := range trackers {
		if strings.HasPrefix(strings.ToLower(tr), "udp:") {
			continue
		}
		ret = append(ret, tr)
	}
	return ret
}
