// Package exchangetest provides an in-memory exchange engine for tests.
package exchangetest

import (
	"sync"
	"sync/atomic"
	"time"

	"torrent-info/common/exchange"
	"torrent-info/common/magnet"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/juju/errors"
)

// Factory serves registered info dictionaries to magnets for their hash.
type Factory struct {
	// Delay before metadata becomes available on a new handle.
	Delay time.Duration
	// Seeders and Peers are reported by every handle.
	Seeders int
	Peers   int
	// Err fails NewSession when set.
	Err error

	mu          sync.Mutex
	metadata    map[metainfo.Hash][]byte
	sessions    int
	released    int
	lastOptions exchange.Options
	lastTracker []string
}

var _ exchange.SessionFactory = (*Factory)(nil)

func NewFactory() *Factory {
	return &Factory{
		Seeders:  -1,
		Peers:    -1,
		metadata: make(map[metainfo.Hash][]byte),
	}
}

// Serve registers infoBytes under their sha1 and returns the hash.
func (f *Factory) Serve(infoBytes []byte) metainfo.Hash {
	h := metainfo.HashBytes(infoBytes)
	f.ServeAs(h, infoBytes)
	return h
}

// ServeAs registers infoBytes under an arbitrary hash.
func (f *Factory) ServeAs(h metainfo.Hash, infoBytes []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata[h] = infoBytes
}

func (f *Factory) NewSession(opts exchange.Options) (exchange.Session, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
	f.lastOptions = opts
	return &session{f: f, opts: opts}, nil
}

// Sessions reports how many sessions were opened and how many released.
func (f *Factory) Sessions() (opened, released int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions, f.released
}

func (f *Factory) LastOptions() exchange.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

// LastTrackers returns the trackers the last magnet was added with.
func (f *Factory) LastTrackers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTracker
}

type session struct {
	f        *Factory
	opts     exchange.Options
	handle   *Handle
	released bool
}

func (s *session) AddMagnet(d *magnet.Descriptor) (exchange.Handle, error) {
	if s.released {
		return nil, errors.New("session already released")
	}
	trackers := d.Trackers
	if len(trackers) == 0 {
		trackers = s.opts.Trackers
	}
	s.f.mu.Lock()
	info := s.f.metadata[d.InfoHash]
	s.f.lastTracker = trackers
	s.f.mu.Unlock()
	s.handle = NewHandle(d.InfoHash, info, s.f.Delay)
	s.handle.seeders, s.handle.peers = s.f.Seeders, s.f.Peers
	return s.handle, nil
}

func (s *session) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	if s.handle != nil {
		s.handle.Stop()
	}
	s.f.mu.Lock()
	s.f.released++
	s.f.mu.Unlock()
	return nil
}

// Handle delivers info after a delay. A nil info never arrives.
type Handle struct {
	hash      metainfo.Hash
	info      []byte
	got       chan struct{}
	once      sync.Once
	timer     *time.Timer
	announces atomic.Int32
	seeders   int
	peers     int
}

var _ exchange.Handle = (*Handle)(nil)

func NewHandle(hash metainfo.Hash, info []byte, delay time.Duration) *Handle {
	h := &Handle{
		hash:    hash,
		info:    info,
		got:     make(chan struct{}),
		seeders: -1,
		peers:   -1,
	}
	if info != nil {
		h.timer = time.AfterFunc(delay, func() {
			h.once.Do(func() { close(h.got) })
		})
	}
	return h
}

// SetSwarm sets the counts reported by Swarm.
func (h *Handle) SetSwarm(seeders, peers int) {
	h.seeders, h.peers = seeders, peers
}

func (h *Handle) Stop() {
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Announces counts ForceDHTAnnounce calls.
func (h *Handle) Announces() int {
	return int(h.announces.Load())
}

func (h *Handle) InfoHash() metainfo.Hash {
	return h.hash
}

func (h *Handle) GotMetadata() <-chan struct{} {
	return h.got
}

func (h *Handle) HasMetadata() bool {
	select {
	case <-h.got:
		return true
	default:
		return false
	}
}

func (h *Handle) Metadata() ([]byte, error) {
	if !h.HasMetadata() {
		return nil, errors.New("metadata not available yet")
	}
	return h.info, nil
}

func (h *Handle) Swarm() (int, int) {
	return h.seeders, h.peers
}

func (h *Handle) ForceDHTAnnounce() {
	h.announces.Add(1)
}
