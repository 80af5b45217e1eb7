package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"torrent-info/common/executor"
	"torrent-info/common/model"
	"torrent-info/resolver/internal/config"
	"torrent-info/resolver/internal/logic"
	"torrent-info/resolver/internal/svc"
	"torrent-info/resolver/internal/types"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/core/conf"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	configFile = flag.String("f", "etc/resolver.yaml", "the config file")
	magnets    stringList
	fileFlag   = flag.String("file", "", "resolve a .torrent file")
	urlFlag    = flag.String("url", "", "fetch and resolve a remote .torrent file")
	m2tFlag    = flag.String("m2t", "", "write a .torrent file for this magnet")
	outFlag    = flag.String("o", "", "output path for -m2t, defaults to the suggested filename")
	listFlag   = flag.Bool("list", false, "list cached torrents")
	nameFlag   = flag.String("name", "", "with -list, only names containing this")
	pageFlag   = flag.Int("page", -1, "with -list, offset of the page to show")
	deleteFlag = flag.String("delete", "", "delete comma separated info hashes from the cache")
	clearFlag  = flag.Bool("clear", false, "clear the cache")
	noCache    = flag.Bool("no-cache", false, "ignore cached results for -magnet")
	jsonFlag   = flag.Bool("json", false, "print results as JSON")
)

func init() {
	flag.Var(&magnets, "magnet", "magnet uri or info hash to resolve, repeatable")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	var c config.Config
	conf.MustLoad(*configFile, &c)
	c.MustSetUp()

	svcCtx, err := svc.NewServiceContext(c)
	if err != nil {
		logrus.Fatalf("Failed to initialize resolver: %+v", err)
	}
	defer svcCtx.Close()

	ctx := context.Background()
	failed := false
	switch {
	case *clearFlag || *deleteFlag != "":
		req := &types.CacheMutateRequest{Op: types.CacheOpClear}
		if !*clearFlag {
			req = &types.CacheMutateRequest{Op: types.CacheOpDelete, Hashes: []string{*deleteFlag}}
		}
		resp, err := logic.NewCacheMutateLogic(ctx, svcCtx).CacheMutate(req)
		if err != nil {
			logrus.Fatalf("Failed to %s cache: %+v", req.Op, err)
		}
		fmt.Printf("%d entries left\n", resp.Count)
	case *listFlag:
		req := &types.CacheQueryRequest{Name: *nameFlag}
		if *pageFlag >= 0 {
			req.Page = pageFlag
		}
		resp, err := logic.NewCacheQueryLogic(ctx, svcCtx).CacheQuery(req)
		if err != nil {
			logrus.Fatalf("Failed to list cache: %+v", err)
		}
		for _, t := range resp.Entries {
			printTorrent(t)
		}
		if !*jsonFlag {
			fmt.Printf("%d of %d entries\n", len(resp.Entries), resp.Total)
		}
	case *m2tFlag != "":
		file, err := logic.NewSynthesizeFileLogic(ctx, svcCtx).SynthesizeFile(&types.MagnetRequest{URI: *m2tFlag})
		if file == nil {
			logrus.Fatalf("Failed to build torrent file: %+v", err)
		}
		if err != nil {
			logrus.Warnf("Torrent file built but not cached: %+v", err)
		}
		out := *outFlag
		if out == "" {
			out = file.Filename
		}
		if err = os.WriteFile(out, file.Data, 0o644); err != nil {
			logrus.Fatalf("Failed to write %s: %+v", out, err)
		}
		fmt.Printf("Wrote %s (%s)\n", out, humanize.IBytes(uint64(len(file.Data))))
	case *fileFlag != "":
		data, err := os.ReadFile(*fileFlag)
		if err != nil {
			logrus.Fatalf("Failed to read %s: %+v", *fileFlag, err)
		}
		t, err := logic.NewResolveFileLogic(ctx, svcCtx).ResolveFile(&types.FileRequest{Data: data})
		failed = report(*fileFlag, t, err)
	case *urlFlag != "":
		t, err := logic.NewResolveURLLogic(ctx, svcCtx).ResolveURL(&types.URLRequest{URL: *urlFlag})
		failed = report(*urlFlag, t, err)
	case len(magnets) > 0:
		failed = resolveMagnets(ctx, svcCtx)
	default:
		flag.Usage()
		return 2
	}
	if failed {
		return 1
	}
	return 0
}

// resolveMagnets resolves every -magnet concurrently, each in its own session.
func resolveMagnets(ctx context.Context, svcCtx *svc.ServiceContext) bool {
	lock := sync.Mutex{}
	failed := false
	exec := executor.NewExecutor[string](ctx, svcCtx.Config.Workers, len(magnets), func(ctx context.Context, uri string) {
		t, err := logic.NewResolveMagnetLogic(ctx, svcCtx).ResolveMagnet(&types.MagnetRequest{
			URI:         uri,
			BypassCache: *noCache,
		})
		lock.Lock()
		defer lock.Unlock()
		if report(uri, t, err) {
			failed = true
		}
	})
	exec.Start()
	for _, uri := range magnets {
		exec.Commit(uri)
	}
	exec.Drain()
	return failed
}

// report prints t and logs err, returning true when nothing was resolved.
func report(input string, t *model.Torrent, err error) bool {
	if t == nil {
		logrus.Errorf("Failed to resolve %s: %+v", input, err)
		return true
	}
	if err != nil {
		logrus.Warnf("Resolved %s but could not cache it: %+v", input, err)
	}
	printTorrent(t)
	return false
}

func printTorrent(t *model.Torrent) {
	if *jsonFlag {
		buf, err := json.Marshal(t)
		if err != nil {
			logrus.Errorf("Failed to marshal torrent: %+v", err)
			return
		}
		fmt.Println(string(buf))
		return
	}
	fmt.Printf("%s  %s\n", t.InfoHash, t.Name)
	fmt.Printf("  size     %s in %d files, %d pieces\n", humanize.IBytes(uint64(t.TotalSize)), t.NumFiles, t.NumPieces)
	fmt.Printf("  created  %s by %s\n", humanize.Time(t.CreationDate), t.Creator)
	if t.Comment != "" {
		fmt.Printf("  comment  %s\n", t.Comment)
	}
	if t.Seeders != nil && t.Peers != nil {
		fmt.Printf("  swarm    %d seeders, %d peers\n", *t.Seeders, *t.Peers)
	}
	if t.ElapsedTime != nil {
		fmt.Printf("  took     %.1fs\n", *t.ElapsedTime)
	}
	fmt.Printf("  trackers %d\n", len(t.Trackers))
	fmt.Printf("  magnet   %s\n", t.MagnetURI)
}
