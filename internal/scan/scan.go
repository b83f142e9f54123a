// Package scan enumerates the RGB cube, derives the secondary/text pair for
// every brand colour and reports the ones failing WCAG AA.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/derive"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
	"github.com/MeKo-Tech/contrastscan/internal/worker"
)

// DefaultMaxChannel is the highest channel value scanned. 255 is excluded on
// every channel, so the full scan covers 255^3 colours.
const DefaultMaxChannel = 254

// Finding is the evaluation of one brand colour.
type Finding struct {
	Brand     colour.RGB
	Secondary colour.RGB
	Text      colour.RGB
	Ratio     float64
	Level     wcag.Level
}

// Evaluate derives the pair for brand and classifies its contrast.
func Evaluate(brand colour.RGB) Finding {
	pair := derive.Derive(brand)
	ratio := pair.Ratio()
	return Finding{
		Brand:     brand,
		Secondary: pair.Secondary,
		Text:      pair.Text,
		Ratio:     ratio,
		Level:     wcag.Classify(ratio),
	}
}

// Line renders the console report line. Passing findings render empty.
func (f Finding) Line() string {
	switch f.Level {
	case wcag.LevelFailLarge:
		return fmt.Sprintf("Fail at large/bold size! Ratio %.2f for brand colour %s", f.Ratio, f.Brand.Hex())
	case wcag.LevelFailSmall:
		return fmt.Sprintf("Fail at small size! Ratio %.2f for brand colour %s", f.Ratio, f.Brand.Hex())
	default:
		return ""
	}
}

// EmitFunc receives failing findings in (R, G, B) ascending order.
// Returning an error stops the scan.
type EmitFunc func(Finding) error

// Stats summarises a scan.
type Stats struct {
	Scanned   int
	Pass      int
	FailSmall int
	FailLarge int
	Elapsed   time.Duration
}

// Failed returns the number of colours failing at either size.
func (s Stats) Failed() int {
	return s.FailSmall + s.FailLarge
}

func (s *Stats) add(o Stats) {
	s.Scanned += o.Scanned
	s.Pass += o.Pass
	s.FailSmall += o.FailSmall
	s.FailLarge += o.FailLarge
}

// Options configures a Scanner.
type Options struct {
	// MinChannel and MaxChannel are the inclusive bounds for each channel.
	MinChannel int
	MaxChannel int
	// Workers > 1 scans red slabs in parallel. Output order is unchanged.
	Workers int
	// OnProgress is called after each red slab.
	OnProgress worker.ProgressFunc
	Logger     *slog.Logger
}

// DefaultOptions returns the options for a full sequential scan.
func DefaultOptions() Options {
	return Options{MaxChannel: DefaultMaxChannel, Workers: 1}
}

// Scanner walks the colour cube.
type Scanner struct {
	minChannel int
	maxChannel int
	workers    int
	onProgress worker.ProgressFunc
	logger     *slog.Logger
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	if opts.MaxChannel < 0 || opts.MaxChannel > 255 {
		return nil, fmt.Errorf("max channel %d: %w", opts.MaxChannel, colour.ErrOutOfRange)
	}
	if opts.MinChannel < 0 || opts.MinChannel > opts.MaxChannel {
		return nil, fmt.Errorf("min channel %d (max %d): %w", opts.MinChannel, opts.MaxChannel, colour.ErrOutOfRange)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{
		minChannel: opts.MinChannel,
		maxChannel: opts.MaxChannel,
		workers:    workers,
		onProgress: opts.OnProgress,
		logger:     opts.Logger,
	}, nil
}

func (s *Scanner) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Slabs returns the number of red slabs (progress units) in a scan.
func (s *Scanner) Slabs() int {
	return s.maxChannel - s.minChannel + 1
}

// Total returns the number of colours in a scan.
func (s *Scanner) Total() int {
	n := s.Slabs()
	return n * n * n
}

// Run scans every colour and passes each failing finding to emit.
func (s *Scanner) Run(ctx context.Context, emit EmitFunc) (Stats, error) {
	start := time.Now()
	s.log().Debug("scan started", "min_channel", s.minChannel, "max_channel", s.maxChannel, "workers", s.workers, "colours", s.Total())

	var (
		stats Stats
		err   error
	)
	if s.workers > 1 {
		stats, err = s.runParallel(ctx, emit)
	} else {
		stats, err = s.runSequential(ctx, emit)
	}
	stats.Elapsed = time.Since(start)

	if err != nil {
		return stats, err
	}

	s.log().Debug("scan finished",
		"scanned", stats.Scanned,
		"fail_small", stats.FailSmall,
		"fail_large", stats.FailLarge,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

func (s *Scanner) runSequential(ctx context.Context, emit EmitFunc) (Stats, error) {
	var stats Stats
	for i := 0; i < s.Slabs(); i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		sl := s.scanSlab(s.minChannel + i)
		stats.add(sl.stats)
		for _, f := range sl.findings {
			if err := emit(f); err != nil {
				return stats, fmt.Errorf("emit %s: %w", f.Brand.Hex(), err)
			}
		}

		if s.onProgress != nil {
			s.onProgress(i+1, s.Slabs(), 0)
		}
	}
	return stats, nil
}

// runParallel scans slabs on a worker pool and re-sequences them so findings
// reach emit in red order. The first error cancels the slabs not yet started.
func (s *Scanner) runParallel(ctx context.Context, emit EmitFunc) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := worker.New(worker.Config[slab]{
		Workers: s.workers,
		Process: func(ctx context.Context, task worker.Task) (slab, error) {
			if err := ctx.Err(); err != nil {
				return slab{}, err
			}
			return s.scanSlab(s.minChannel + task.Index), nil
		},
		OnProgress: s.onProgress,
	})

	tasks := make([]worker.Task, s.Slabs())
	for i := range tasks {
		tasks[i] = worker.Task{Index: i}
	}

	var (
		stats    Stats
		firstErr error
		next     int
		pending  = make(map[int]slab)
	)

	pool.Stream(ctx, tasks, func(res worker.Result[slab]) {
		if firstErr != nil {
			return
		}
		if res.Err != nil {
			firstErr = fmt.Errorf("slab r=%d: %w", s.minChannel+res.Task.Index, res.Err)
			cancel()
			return
		}

		pending[res.Task.Index] = res.Value
		for {
			sl, ok := pending[next]
			if !ok {
				return
			}
			delete(pending, next)
			next++

			stats.add(sl.stats)
			for _, f := range sl.findings {
				if err := emit(f); err != nil {
					firstErr = fmt.Errorf("emit %s: %w", f.Brand.Hex(), err)
					cancel()
					return
				}
			}
		}
	})

	if firstErr != nil {
		return stats, firstErr
	}
	return stats, nil
}

type slab struct {
	findings []Finding
	stats    Stats
}

// scanSlab evaluates every colour with the given red channel.
func (s *Scanner) scanSlab(r int) slab {
	var sl slab
	for g := s.minChannel; g <= s.maxChannel; g++ {
		for b := s.minChannel; b <= s.maxChannel; b++ {
			f := Evaluate(colour.RGB{R: uint8(r), G: uint8(g), B: uint8(b)})
			sl.stats.Scanned++
			switch f.Level {
			case wcag.LevelPass:
				sl.stats.Pass++
				continue
			case wcag.LevelFailSmall:
				sl.stats.FailSmall++
			case wcag.LevelFailLarge:
				sl.stats.FailLarge++
			}
			sl.findings = append(sl.findings, f)
		}
	}
	return sl
}
