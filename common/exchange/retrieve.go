package exchange

import (
	"context"
	"time"

	"torrent-info/common/errs"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

const pollInterval = 100 * time.Millisecond

type State int

const (
	Waiting State = iota
	HaveMetadata
	Exhausted
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case HaveMetadata:
		return "HAVE_METADATA"
	case Exhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

type Result struct {
	State     State
	InfoBytes []byte
	// Seeders and Peers are nil when the swarm size is unknown.
	Seeders  *int
	Peers    *int
	Attempts int
	Elapsed  time.Duration
}

// Retrieve waits up to nTry attempts of timeout each for h to obtain its info
// dictionary. Each attempt forces a DHT announce on the same handle. When all
// attempts run out the returned Timeout error reports nTry*timeout.
func Retrieve(ctx context.Context, h Handle, timeout time.Duration, nTry int) (*Result, error) {
	if nTry < 1 {
		nTry = 1
	}
	start := time.Now()
	ret := &Result{State: Waiting}
	for ret.Attempts < nTry {
		ret.Attempts++
		h.ForceDHTAnnounce()
		got, err := waitAttempt(ctx, h, timeout)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !got {
			logx.Debugf("Attempt %d/%d for %s got no metadata", ret.Attempts, nTry, h.InfoHash().HexString())
			continue
		}
		ret.InfoBytes, err = h.Metadata()
		if err != nil {
			return nil, errors.Trace(err)
		}
		ret.State = HaveMetadata
		seeders, peers := h.Swarm()
		if seeders >= 0 && peers >= 0 {
			ret.Seeders, ret.Peers = &seeders, &peers
		}
		ret.Elapsed = time.Since(start)
		return ret, nil
	}
	ret.State = Exhausted
	ret.Elapsed = time.Since(start)
	logx.Infof("Gave up on %s after %d attempts in %s", h.InfoHash().HexString(), ret.Attempts, ret.Elapsed)
	return nil, errs.Timeoutf("no metadata for %s after %s", h.InfoHash().HexString(), time.Duration(nTry)*timeout)
}

func waitAttempt(ctx context.Context, h Handle, timeout time.Duration) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if h.HasMetadata() {
			return true, nil
		}
		select {
		case <-h.GotMetadata():
			return true, nil
		case <-ticker.C:
		case <-deadline.C:
			return h.HasMetadata(), nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
