// Package cli implements the kvsnap command-line surface: one input
// path, a --format choice, and optional db/type/key filters (spec
// §6.4), in the flag.NewFlagSet + structured-logging style the
// teacher uses for its subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"kvsnap/internal/config"
	"kvsnap/internal/emit"
	"kvsnap/internal/klog"
	"kvsnap/internal/progress"
	"kvsnap/internal/rdb"
	"kvsnap/internal/source"
)

// Execute parses args and runs the decode pipeline, returning a
// process exit code (0 success, non-zero parse/setup failure).
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[kvsnap] ")

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println("kvsnap 0.1.0-dev")
		return 0
	default:
		return runDecode(args)
	}
}

func runDecode(args []string) int {
	fs := flag.NewFlagSet("kvsnap", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		configPath string
		format     string
		dbList     string
		typeList   string
		keyPattern string
		liveAddr   string
		livePwd    string
		liveQPS    int
		logDir     string
		logLevel   string
		quiet      bool
	)
	fs.StringVar(&configPath, "config", "", "Optional YAML config file with CLI defaults")
	fs.StringVar(&format, "format", "", "Output format: json, plain, protocol, nil (default json)")
	fs.StringVar(&dbList, "db", "", "Comma-separated database ids to include (default: all)")
	fs.StringVar(&typeList, "type", "", "Comma-separated logical types to include: string,list,set,zset,hash (default: all)")
	fs.StringVar(&keyPattern, "key", "", "Regular expression a key must match to be included")
	fs.StringVar(&liveAddr, "live-addr", "", "Apply decoded events directly to this Redis-protocol address instead of printing")
	fs.StringVar(&livePwd, "live-password", "", "Password for -live-addr")
	fs.IntVar(&liveQPS, "live-qps", 0, "Throttle -live-addr writes to this many ops/sec (0 = unthrottled)")
	fs.StringVar(&logDir, "log-dir", "", "Directory for kvsnap.log (default: current directory)")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	fs.BoolVar(&quiet, "quiet", false, "Suppress progress reporting")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		log.Printf("failed to parse arguments: %v", err)
		return 1
	}

	rest := fs.Args()
	if len(rest) != 1 {
		log.Println("exactly one input snapshot path is required")
		fs.Usage()
		return 2
	}
	inputPath := rest[0]

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Printf("failed to load config: %v", err)
			return 2
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	if format != "" {
		cfg.Format = format
	}
	if liveAddr != "" {
		cfg.Live.Addr = liveAddr
	}
	if livePwd != "" {
		cfg.Live.Password = livePwd
	}
	if liveQPS != 0 {
		cfg.Live.QPS = liveQPS
	}
	if logDir != "" {
		cfg.Log.Dir = logDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid configuration: %v", err)
		return 2
	}

	if err := klog.Init(cfg.Log.Dir, parseLogLevel(cfg.Log.Level)); err != nil {
		log.Printf("failed to initialize logging: %v", err)
		return 1
	}
	defer klog.Close()
	log.SetOutput(klog.Writer())

	if dbList == "" && len(cfg.Filter.Databases) > 0 {
		ids := make([]string, len(cfg.Filter.Databases))
		for i, id := range cfg.Filter.Databases {
			ids[i] = strconv.FormatUint(id, 10)
		}
		dbList = strings.Join(ids, ",")
	}
	if typeList == "" && len(cfg.Filter.Types) > 0 {
		typeList = strings.Join(cfg.Filter.Types, ",")
	}
	if keyPattern == "" {
		keyPattern = cfg.Filter.KeyRegexp
	}
	filter, err := buildFilter(dbList, typeList, keyPattern)
	if err != nil {
		log.Printf("invalid filter: %v", err)
		return 2
	}

	emitter, closeEmitter, err := buildEmitter(cfg)
	if err != nil {
		log.Printf("failed to initialize emitter: %v", err)
		return 1
	}
	if closeEmitter != nil {
		defer closeEmitter()
	}

	in, err := os.Open(inputPath)
	if err != nil {
		log.Printf("failed to open input: %v", err)
		return 1
	}
	defer in.Close()

	stat, _ := in.Stat()
	var totalSize int64
	if stat != nil {
		totalSize = stat.Size()
	}

	decompressed, err := source.Open(in)
	if err != nil {
		log.Printf("failed to open input stream: %v", err)
		return 1
	}

	reader := decompressed
	if !quiet {
		reader = progress.Wrap(decompressed, 16<<20, func(n int64) {
			if totalSize > 0 {
				klog.Console("progress: %d/%d bytes (%.1f%%)", n, totalSize, 100*float64(n)/float64(totalSize))
			} else {
				klog.Console("progress: %d bytes", n)
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		klog.Warn("interrupted, closing input to stop the decode")
		in.Close()
	}()

	parser := rdb.New(reader, filter, emitter)
	if err := parser.Parse(); err != nil {
		log.Printf("decode failed: %v", err)
		return 1
	}

	klog.Console("decode complete")
	return 0
}

func buildFilter(dbList, typeList, keyPattern string) (rdb.Filter, error) {
	if dbList == "" && typeList == "" && keyPattern == "" {
		return rdb.AllowAll{}, nil
	}
	filter := &rdb.StrictFilter{}

	if dbList != "" {
		filter.Databases = map[uint64]struct{}{}
		for _, part := range strings.Split(dbList, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad -db value %q: %w", part, err)
			}
			filter.Databases[id] = struct{}{}
		}
	}

	if typeList != "" {
		filter.Types = map[byte]struct{}{}
		for _, part := range strings.Split(typeList, ",") {
			name := strings.TrimSpace(part)
			bytes, ok := rdb.TypeBytesForName(name)
			if !ok {
				return nil, fmt.Errorf("unknown -type value %q", name)
			}
			for _, b := range bytes {
				filter.Types[b] = struct{}{}
			}
		}
	}

	if keyPattern != "" {
		re, err := regexp.Compile(keyPattern)
		if err != nil {
			return nil, fmt.Errorf("bad -key pattern: %w", err)
		}
		filter.KeyRegexp = re
	}

	return filter, nil
}

func buildEmitter(cfg *config.Config) (rdb.Emitter, func(), error) {
	if cfg.Live.Addr != "" {
		live, err := emit.NewLive(context.Background(), cfg.Live.Addr, cfg.Live.Password, cfg.Live.QPS)
		if err != nil {
			return nil, nil, err
		}
		return live, func() { live.Close() }, nil
	}

	switch cfg.Format {
	case "plain":
		p := emit.NewPlain(os.Stdout)
		return p, func() { p.Flush() }, nil
	case "protocol":
		p := emit.NewProtocol(os.Stdout)
		return p, func() { p.Flush() }, nil
	case "nil":
		return emit.NewNil(), nil, nil
	case "json", "":
		j := emit.NewJSON(os.Stdout)
		return j, func() { j.Flush() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q", cfg.Format)
	}
}

func parseLogLevel(levelStr string) klog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return klog.DEBUG
	case "warn", "warning":
		return klog.WARN
	case "error":
		return klog.ERROR
	default:
		return klog.INFO
	}
}

func printUsage() {
	binary := filepath.Base(os.Args[0])
	fmt.Printf(`kvsnap - streaming snapshot decoder

Usage:
  %[1]s [options] <snapshot-path>

Options:
  -format {json|plain|protocol|nil}   Output format (default json)
  -db ids                             Comma-separated database ids to include
  -type names                         Comma-separated logical types: string,list,set,zset,hash
  -key pattern                        Regular expression a key must match
  -live-addr addr                     Apply events directly to a Redis-protocol server
  -config path                        YAML file with CLI defaults
  help                                Show this help
  version                             Show version info

Examples:
  %[1]s -format json dump.rdb
  %[1]s -format protocol -db 0,1 -type hash dump.rdb
  %[1]s -live-addr 127.0.0.1:6379 dump.rdb
`, binary)
}
