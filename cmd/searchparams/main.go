package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ConradIrwin/searchparams-go"
	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

type globals struct {
	logger log.Logger
	opts   []searchparams.Option
	stdin  io.Reader
	stdout io.Writer
}

// readQuery returns query, or stdin when query is empty.
func (g *globals) readQuery(query string) (string, error) {
	if query != "" {
		return query, nil
	}
	data, err := io.ReadAll(g.stdin)
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (g *globals) parse(query string) (*searchparams.Params, error) {
	query, err := g.readQuery(query)
	if err != nil {
		return nil, err
	}
	p := searchparams.Parse(query, g.opts...)
	level.Debug(g.logger).Log("msg", "parsed query", "bytes", len(query), "entries", p.Len())
	return p, p.Err()
}

type cli struct {
	LogLevel   string `name:"log.level" default:"info" enum:"debug,info,warn,error" help:"Only log messages with the given severity or above (${enum})."`
	Separators string `default:"&" env:"SEARCHPARAMS_SEPARATORS" help:"Characters that separate pairs."`
	MaxDepth   int    `default:"64" env:"SEARCHPARAMS_MAX_DEPTH" help:"Maximum number of subscripts in a name, 0 for no limit."`
	MaxVars    int    `default:"1000" env:"SEARCHPARAMS_MAX_VARS" help:"Maximum number of pairs read from a query, 0 for no limit."`

	Entries entriesCmd `cmd:"" help:"Print the entries of a query, one key and value per line."`
	Tokens  tokensCmd  `cmd:"" help:"Print the tokens of a query."`
	Tupples tupplesCmd `cmd:"" help:"Print the nested parameters of a query."`
	Get     getCmd     `cmd:"" help:"Print the value of a key."`
	Encode  encodeCmd  `cmd:"" help:"Encode a query, JSON or TOML document as a query string."`
}

type entriesCmd struct {
	Query string `arg:"" optional:"" help:"Query string, read from stdin if omitted."`
}

func (c *entriesCmd) Run(g *globals) error {
	p, err := g.parse(c.Query)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(g.stdout)
	for k, v := range p.All() {
		fmt.Fprintf(w, "%s\t%s\n", k, v)
	}
	return w.Flush()
}

type tokensCmd struct {
	Query string `arg:"" optional:"" help:"Query string, read from stdin if omitted."`
}

func (c *tokensCmd) Run(g *globals) error {
	query, err := g.readQuery(c.Query)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(g.stdout)
	for n, token := range searchparams.Tokens(query, g.opts...) {
		fmt.Fprintf(w, "%d\t%s\t%q\n", n, token.Kind, token.Content)
	}
	return w.Flush()
}

type tupplesCmd struct {
	Query  string `arg:"" optional:"" help:"Query string, read from stdin if omitted."`
	Format string `default:"json" enum:"json,dump" help:"Output format (${enum})."`
}

func (c *tupplesCmd) Run(g *globals) error {
	p, err := g.parse(c.Query)
	if err != nil {
		return err
	}
	tupples, err := p.Tupples()
	if err != nil {
		return err
	}
	if c.Format == "dump" {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Fdump(g.stdout, tupples)
		return nil
	}
	data, err := tupples.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stdout, "%s\n", data)
	return err
}

type getCmd struct {
	Key   string `arg:"" help:"Key to look up, like a[b] or a[]."`
	Query string `arg:"" optional:"" help:"Query string, read from stdin if omitted."`
	All   bool   `help:"Print every value of the key, not just the first."`
}

func (c *getCmd) Run(g *globals) error {
	p, err := g.parse(c.Query)
	if err != nil {
		return err
	}
	values := p.GetAll(c.Key)
	if len(values) == 0 {
		return errors.Errorf("key %s not found", c.Key)
	}
	if !c.All {
		values = values[:1]
	}
	_, err = fmt.Fprintln(g.stdout, strings.Join(values, "\n"))
	return err
}

type encodeCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"Input file, stdin if omitted."`
	From string `default:"query" enum:"query,json,toml" help:"Input format (${enum})."`
}

func (c *encodeCmd) Run(g *globals) error {
	var (
		data []byte
		err  error
	)
	if c.File == "" {
		data, err = io.ReadAll(g.stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	init, err := readInput(c.From, data)
	if err != nil {
		return err
	}
	level.Debug(g.logger).Log("msg", "read input", "format", c.From, "bytes", len(data))

	query, err := searchparams.New(init, g.opts...).Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.stdout, query)
	return err
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}
	return level.NewFilter(logger, allow)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli
	exited := false
	parser, err := kong.New(&c,
		kong.Name("searchparams"),
		kong.Description("Inspect and build URL query strings with bracketed keys."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.UsageOnError(),
	)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	if exited {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, c.LogLevel)
	g := &globals{
		logger: logger,
		opts: []searchparams.Option{
			searchparams.WithSeparators(c.Separators),
			searchparams.WithMaxDepth(c.MaxDepth),
			searchparams.WithMaxVars(c.MaxVars),
		},
		stdin:  stdin,
		stdout: stdout,
	}
	if err := ctx.Run(g); err != nil {
		level.Error(logger).Log("msg", "command failed", "cmd", ctx.Command(), "err", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
