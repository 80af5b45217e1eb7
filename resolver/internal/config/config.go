package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/service"
)

type CacheConf struct {
	Driver   string `json:",default=bolt,options=bolt|mongo"`
	Path     string `json:",default=torrent-info.db"`
	Mongo    string `json:",optional"`
	Database string `json:",default=torrent_info"`
}

type Config struct {
	service.ServiceConf
	UseDHT     bool     `json:",default=false"`
	Timeout    int      `json:",default=15"`
	NTry       int      `json:",default=3"`
	HTTPProxy  string   `json:",optional"`
	PageSize   int      `json:",default=20"`
	Trackers   []string `json:",optional"`
	Convention string   `json:",default=auto,options=auto|windows|mac|linux"`
	TempDir    string   `json:",optional"`
	Workers    int      `json:",default=4"`
	AMQP       string   `json:",optional"`
	Cache      CacheConf
}

// TimeoutDuration is the per-attempt exchange budget.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
