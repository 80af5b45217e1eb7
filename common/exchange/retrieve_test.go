package exchange_test

import (
	"context"
	"testing"
	"time"

	"torrent-info/common/errs"
	"torrent-info/common/exchange"
	"torrent-info/common/exchange/exchangetest"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/assert"
)

var testHash = metainfo.NewHashFromHex("c12fe1c06bba254a9dc9f519b335aa7c1367a88a")

func TestRetrieveExhausted(t *testing.T) {
	h := exchangetest.NewHandle(testHash, nil, 0)
	start := time.Now()
	ret, err := exchange.Retrieve(context.Background(), h, 200*time.Millisecond, 3)
	elapsed := time.Since(start)

	assert.Nil(t, ret)
	assert.True(t, errs.IsKind(err, errs.KindTimeout))
	assert.Contains(t, err.Error(), "600ms")
	assert.GreaterOrEqual(t, elapsed, 600*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, 3, h.Announces())
}

func TestRetrieveSecondAttempt(t *testing.T) {
	h := exchangetest.NewHandle(testHash, []byte("d4:name1:ae"), 300*time.Millisecond)
	h.SetSwarm(2, 5)
	ret, err := exchange.Retrieve(context.Background(), h, 200*time.Millisecond, 3)
	if assert.NoError(t, err) {
		assert.Equal(t, exchange.HaveMetadata, ret.State)
		assert.Equal(t, 2, ret.Attempts)
		assert.Equal(t, []byte("d4:name1:ae"), ret.InfoBytes)
		assert.Equal(t, 2, *ret.Seeders)
		assert.Equal(t, 5, *ret.Peers)
		assert.Less(t, ret.Elapsed, 400*time.Millisecond+pollSlack)
	}
	assert.Equal(t, 2, h.Announces())
}

const pollSlack = 300 * time.Millisecond

func TestRetrieveUnknownSwarm(t *testing.T) {
	h := exchangetest.NewHandle(testHash, []byte("de"), 0)
	ret, err := exchange.Retrieve(context.Background(), h, time.Second, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, ret.Attempts)
		assert.Nil(t, ret.Seeders)
		assert.Nil(t, ret.Peers)
	}
}

func TestRetrieveCancelled(t *testing.T) {
	h := exchangetest.NewHandle(testHash, nil, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := exchange.Retrieve(ctx, h, time.Second, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "WAITING", exchange.Waiting.String())
	assert.Equal(t, "HAVE_METADATA", exchange.HaveMetadata.String())
	assert.Equal(t, "EXHAUSTED", exchange.Exhausted.String())
}
