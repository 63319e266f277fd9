// Command flatbench times sequential and random insertions into an ordered
// tree set and into the sorted-slice flat set.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/urfave/cli/v2"

	"testsuite/internal/flatset"
)

const (
	countFlag   = "count"
	seedFlag    = "seed"
	hashsetFlag = "hashset"
)

// inserter adds value to the set under test.
type inserter interface {
	insert(value int)
}

type treeSet struct{ s *treeset.Set }

func (t treeSet) insert(v int) { t.s.Add(v) }

type flatSet struct{ s *flatset.Set[int] }

func (f flatSet) insert(v int) { f.s.Insert(v) }

type hashSet struct{ s mapset.Set[int] }

func (h hashSet) insert(v int) { h.s.Add(v) }

type candidate struct {
	name  string
	build func() inserter
}

type benchConfig struct {
	count   int
	seed    int64
	hashset bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "flatbench",
		Usage:  "compare insertion times of set implementations",
		Writer: out,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  countFlag,
				Value: 100000,
				Usage: "number of insertions per run",
			},
			&cli.Int64Flag{
				Name:  seedFlag,
				Usage: "random source seed (default: current time)",
			},
			&cli.BoolFlag{
				Name:  hashsetFlag,
				Usage: "also time an unordered hash set",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := benchConfig{
				count:   c.Int(countFlag),
				seed:    c.Int64(seedFlag),
				hashset: c.Bool(hashsetFlag),
			}
			if !c.IsSet(seedFlag) {
				cfg.seed = time.Now().UnixNano()
			}
			if cfg.count < 0 {
				return fmt.Errorf("--%s must not be negative", countFlag)
			}
			return run(c.Context, out, cfg)
		},
	}
}

func candidates(cfg benchConfig) []candidate {
	list := []candidate{
		{"set", func() inserter { return treeSet{treeset.NewWithIntComparator()} }},
		{"flatset", func() inserter { return flatSet{flatset.New[int]()} }},
	}
	if cfg.hashset {
		list = append(list, candidate{"hashset", func() inserter { return hashSet{mapset.NewThreadUnsafeSet[int]()} }})
	}
	return list
}

func run(ctx context.Context, out io.Writer, cfg benchConfig) error {
	rng := rand.New(rand.NewSource(cfg.seed))
	runs := []struct {
		name  string
		value func(i int) int
	}{
		{"ordered", func(i int) int { return i }},
		{"random", func(int) int { return rng.Intn(cfg.count + 1) }},
	}

	for _, r := range runs {
		for _, cand := range candidates(cfg) {
			if err := ctx.Err(); err != nil {
				return err
			}
			set := cand.build()
			start := time.Now()
			for i := 0; i < cfg.count; i++ {
				set.insert(r.value(i))
			}
			fmt.Fprintf(out, "%s %s: %f\n", cand.name, r.name, time.Since(start).Seconds())
		}
	}
	return nil
}
