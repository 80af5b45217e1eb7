package svc

import (
	"net/http"
	"time"

	"torrent-info/common/cache"
	"torrent-info/common/exchange"
	"torrent-info/common/pathscrub"
	"torrent-info/resolver/internal/config"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/metric"
)

const (
	metricsNamespace = "torrent_info"
	metricsSubsystem = "resolver"
)

// ResolverEventCounter counts resolver events by name.
var ResolverEventCounter = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: metricsNamespace,
	Subsystem: metricsSubsystem,
	Name:      "event",
	Labels:    []string{"event"},
})

type ServiceContext struct {
	Config         config.Config
	Cache          *cache.Cache
	SessionFactory exchange.SessionFactory
	TrackerList    *TrackerList
	Convention     pathscrub.Convention
	// Publisher is nil unless AMQP is configured.
	Publisher           message.Publisher
	HTTPClient          *http.Client
	MetricResolverEvent metric.CounterVec
	Now                 func() time.Time
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	convention, err := pathscrub.ParseConvention(c.Convention)
	if err != nil {
		return nil, errors.Trace(err)
	}
	svcCtx := &ServiceContext{
		Config:              c,
		SessionFactory:      exchange.NewEngine(c.TempDir),
		TrackerList:         NewTrackerList(c.Trackers),
		Convention:          convention,
		HTTPClient:          &http.Client{Timeout: c.TimeoutDuration()},
		MetricResolverEvent: ResolverEventCounter,
		Now:                 time.Now,
	}
	if err = InjectCache(svcCtx); err != nil {
		return nil, errors.Trace(err)
	}
	if err = InjectPublisher(svcCtx); err != nil {
		svcCtx.Cache.Close()
		return nil, errors.Trace(err)
	}
	return svcCtx, nil
}

func InjectCache(svcCtx *ServiceContext) error {
	var backend cache.Backend
	var err error
	cc := svcCtx.Config.Cache
	switch cc.Driver {
	case "mongo":
		backend, err = cache.OpenMongo(cc.Database, cc.Mongo)
	default:
		backend, err = cache.OpenBolt(cc.Path)
	}
	if err != nil {
		logx.Errorf("Failed to open %s cache: %+v", cc.Driver, err)
		return errors.Trace(err)
	}
	svcCtx.Cache = cache.New(backend, svcCtx.Config.PageSize)
	return nil
}

func InjectPublisher(svcCtx *ServiceContext) error {
	if svcCtx.Config.AMQP == "" {
		return nil
	}
	amqpConfig := amqp.NewDurablePubSubConfig(svcCtx.Config.AMQP, nil)
	publisher, err := amqp.NewPublisher(amqpConfig, watermill.NewStdLogger(false, false))
	if err != nil {
		logx.Errorf("Failed to connect publisher: %+v", err)
		return errors.Trace(err)
	}
	svcCtx.Publisher = publisher
	return nil
}

func (s *ServiceContext) Close() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logx.Errorf("Failed to close publisher: %+v", err)
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			logx.Errorf("Failed to close cache: %+v", err)
		}
	}
}
