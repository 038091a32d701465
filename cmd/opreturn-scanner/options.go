package main

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/bitcoin"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/extract"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/mirror"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/scanner"
	"github.com/jessevdk/go-flags"
)

const envNamespace = "OPRETURN"

const (
	storePostgres = "postgres"
	storeEmbedded = "embedded"
)

type options struct {
	Network     model.Network `long:"network" env:"NETWORK" description:"network name" default:"mainnet"`
	MetricsAddr string        `long:"metrics-addr" env:"METRICS_ADDR" description:"address for metrics server, empty disables it" default:":2112"`
	Threshold   int           `long:"threshold" env:"THRESHOLD" description:"minimum payload size in bytes; larger payloads are recorded" default:"83"`

	RPC struct {
		URL      string        `long:"url" env:"URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
		User     string        `long:"user" env:"USER" description:"Bitcoin RPC username"`
		Password string        `long:"password" env:"PASSWORD" description:"Bitcoin RPC password"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" description:"timeout of a single RPC call" default:"30s"`
		Attempts int           `long:"attempts" env:"ATTEMPTS" description:"fetch attempts per block before giving up" default:"5"`
		ZMQAddr  string        `long:"zmq-addr" env:"ZMQ_ADDR" description:"zmq hashblock endpoint used to wake follow mode"`
	} `group:"Node" namespace:"rpc" env-namespace:"RPC"`

	Storage struct {
		Store       string `long:"store" env:"STORE" description:"record store" choice:"postgres" choice:"embedded" default:"postgres"`
		PostgresDSN string `long:"postgres-dsn" env:"POSTGRES_DSN" description:"Postgres DSN" default:"postgres://localhost:5432/opreturn?sslmode=disable"`
		DataDir     string `long:"data-dir" env:"DATA_DIR" description:"directory of the embedded database" default:"opreturn_data/db"`
		KVBackend   string `long:"kv-backend" env:"KV_BACKEND" description:"embedded database backend" default:"goleveldb"`
		FilesDir    string `long:"files-dir" env:"FILES_DIR" description:"sidecar file directory, empty disables files" default:"opreturn_data"`
	} `group:"Storage"`

	Analytics struct {
		ClickhouseDSN string        `long:"clickhouse-dsn" env:"CLICKHOUSE_DSN" description:"ClickHouse DSN of the analytics mirror, empty disables it"`
		Mirror        mirror.Config `group:"Mirror" namespace:"mirror" env-namespace:"MIRROR"`
	} `group:"Analytics"`

	Scan struct {
		Prefetch        int           `long:"prefetch" env:"PREFETCH" description:"blocks fetched ahead of the one being persisted" default:"1"`
		PollInterval    time.Duration `long:"poll-interval" env:"POLL_INTERVAL" description:"tip poll interval in follow mode" default:"30s"`
		BackwardWindow  uint64        `long:"backward-window" env:"BACKWARD_WINDOW" description:"blocks per backward run" default:"4320"`
		RangeWorkers    int           `long:"range-workers" env:"RANGE_WORKERS" description:"parallel heights in range mode" default:"4"`
		PersistAttempts uint          `long:"persist-attempts" env:"PERSIST_ATTEMPTS" description:"persist attempts per output" default:"3"`
		PersistDelay    time.Duration `long:"persist-delay" env:"PERSIST_DELAY" description:"delay between persist attempts" default:"500ms"`
	} `group:"Scan" namespace:"scan" env-namespace:"SCAN"`

	Forward  forwardCommand  `command:"forward" description:"scan forward from the checkpoint towards the tip"`
	Backward backwardCommand `command:"backward" description:"scan one window backward from the checkpoint"`
	Both     bothCommand     `command:"both" description:"run forward and backward scans concurrently"`
	Range    rangeCommand    `command:"range" description:"scan an explicit height range"`
	Reset    resetCommand    `command:"reset" description:"delete the records and marker of one height"`
	Rescan   rescanCommand   `command:"rescan" description:"reset and re-scan every height that has records"`
	Stats    statsCommand    `command:"stats" description:"print scan statistics"`
}

type forwardCommand struct {
	Start  *uint64 `long:"start" description:"first height when there is no checkpoint"`
	Follow bool    `long:"follow" description:"keep waiting for new blocks at the tip"`
}

type backwardCommand struct {
	From *uint64 `long:"from" description:"first height when there is no checkpoint"`
}

type bothCommand struct {
	Start  *uint64 `long:"start" description:"forward starts here and backward just below it"`
	Follow bool    `long:"follow" description:"keep the forward scan waiting for new blocks"`
}

type rangeCommand struct {
	Force bool `long:"force" description:"reset and re-scan heights already marked scanned"`
	Args  struct {
		Start uint64 `positional-arg-name:"start" required:"yes"`
		End   uint64 `positional-arg-name:"end"`
	} `positional-args:"yes"`
}

type resetCommand struct {
	Args struct {
		Height uint64 `positional-arg-name:"height" required:"yes"`
	} `positional-args:"yes"`
}

type rescanCommand struct{}

type statsCommand struct{}

func newParser(opts *options) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)
	parser.EnvNamespace = envNamespace
	parser.SubcommandsOptional = false
	return parser
}

func parseOptions(args []string) (*options, string, error) {
	opts := &options{}
	parser := newParser(opts)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, "", err
	}
	if parser.Active == nil {
		return nil, "", fmt.Errorf("no command given")
	}
	return opts, parser.Active.Name, nil
}

// scannerConfig maps the options of command onto the scanner configuration.
// The backward half of "both" starts just below the forward start so the two
// directions never scan the same height.
func (o *options) scannerConfig(command string) scanner.Config {
	cfg := scanner.Config{
		PollInterval:    o.Scan.PollInterval,
		BackwardWindow:  o.Scan.BackwardWindow,
		Prefetch:        o.Scan.Prefetch,
		RangeWorkers:    o.Scan.RangeWorkers,
		PersistAttempts: o.Scan.PersistAttempts,
		PersistDelay:    o.Scan.PersistDelay,
	}
	switch command {
	case "forward":
		cfg.StartHeight = o.Forward.Start
		cfg.Follow = o.Forward.Follow
	case "backward":
		cfg.BackwardFrom = o.Backward.From
	case "both":
		cfg.StartHeight = o.Both.Start
		cfg.Follow = o.Both.Follow
		if s := o.Both.Start; s != nil && *s > 0 {
			from := *s - 1
			cfg.BackwardFrom = &from
		}
	}
	return cfg
}

func (o *options) retryPolicy() bitcoin.Policy {
	policy := bitcoin.DefaultPolicy()
	if o.RPC.Attempts > 0 {
		policy.MaxAttempts = o.RPC.Attempts
	}
	return policy
}

func (o *options) threshold() int {
	if o.Threshold <= 0 {
		return extract.DefaultThreshold
	}
	return o.Threshold
}
