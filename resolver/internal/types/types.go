package types

import "torrent-info/common/model"

const ContentTypeTorrent = "application/x-bittorrent"

// MagnetRequest asks for a magnet link or bare info hash to be resolved.
// Nil optional fields take the configured defaults.
type MagnetRequest struct {
	URI         string    `json:"uri"`
	UseDHT      *bool     `json:"use_dht,optional"`
	Timeout     *int      `json:"timeout,optional"`
	NTry        *int      `json:"n_try,optional"`
	Trackers    *[]string `json:"trackers,optional"`
	HTTPProxy   *string   `json:"http_proxy,optional"`
	BypassCache bool      `json:"no_cache,optional"`
}

type FileRequest struct {
	Data []byte `json:"data"`
}

type TorrentFile struct {
	Data               []byte `json:"-"`
	Filename           string `json:"filename"`
	ContentType        string `json:"content_type"`
	ContentDisposition string `json:"content_disposition"`
}

type CacheQueryRequest struct {
	Name   string   `json:"name,optional"`
	Hashes []string `json:"infohash,optional"`
	Page   *int     `json:"c,optional"`
}

type CacheQueryResponse struct {
	Entries []*model.Torrent `json:"info"`
	Total   int              `json:"total"`
}

const (
	CacheOpClear  = "clear"
	CacheOpDelete = "delete"
)

type CacheMutateRequest struct {
	Op     string   `json:"action"`
	Hashes []string `json:"infohash,optional"`
}

type CacheMutateResponse struct {
	Count int `json:"count"`
}

// URLRequest asks for a remote .torrent file to be fetched and resolved.
type URLRequest struct {
	URL       string  `json:"url"`
	HTTPProxy *string `json:"http_proxy,optional"`
}
