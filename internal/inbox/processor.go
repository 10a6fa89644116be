// Package inbox renders term sheets dropped as text files into a directory.
//
// Layout under the root:
//
//	inbox/     pasted term sheets (*.txt), consumed by the watcher
//	charts/    one <name>.json geometry document per rendered sheet
//	rejected/  sheets that failed to parse, each with a <name>.reason file
//	archive/   blocks of rendered sources (data + meta.txt)
//	.kill      stops the watcher on its next tick
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"payoffchart/internal/export"
	"payoffchart/internal/metrics"
	"payoffchart/internal/model"
	"payoffchart/internal/payoff"
	"payoffchart/internal/session"
	"payoffchart/internal/structure"

	"github.com/rs/zerolog"
)

const (
	DirInbox    = "inbox"
	DirCharts   = "charts"
	DirRejected = "rejected"
	DirArchive  = "archive"
	EnvFile     = "payoffchart.env"
	killFile    = ".kill"
)

const defaultEnv = `# payoffchart settings; process environment overrides these values
PAYOFF_DEFAULT_VARIANT=sharkfin_call
PAYOFF_POLL_INTERVAL=2s
PAYOFF_STRICT=false
PAYOFF_LOG_LEVEL=info
`

// Init creates the directory structure and a default settings file.
func Init(root string) error {
	for _, d := range []string{DirInbox, DirCharts, DirRejected, DirArchive} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", d, err)
		}
	}
	envPath := filepath.Join(root, EnvFile)
	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(envPath, []byte(defaultEnv), 0644); err != nil {
			return fmt.Errorf("write %s: %w", EnvFile, err)
		}
	}
	return nil
}

// Chart is the document written to charts/<name>.json.
type Chart struct {
	Source   string             `json:"source"`
	State    session.State      `json:"state"`
	Geometry model.Geometry     `json:"geometry"`
	Warnings []payoff.Violation `json:"warnings,omitempty"`
}

// Stats counts the outcome of one inbox pass.
type Stats struct {
	Charted  int
	Rejected int
	Block    string // archive block id, empty when nothing was charted
}

type Config struct {
	Root     string
	Registry *structure.Registry
	Fallback model.Variant // structure used when a sheet names none
	Strict   bool
	Log      zerolog.Logger
	Metrics  *metrics.Metrics
}

// Processor renders inbox files. It keeps no state between passes.
type Processor struct {
	root     string
	reg      *structure.Registry
	fallback model.Variant
	strict   bool
	log      zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(cfg Config) *Processor {
	return &Processor{
		root:     cfg.Root,
		reg:      cfg.Registry,
		fallback: cfg.Fallback,
		strict:   cfg.Strict,
		log:      cfg.Log.With().Str("component", "inbox").Logger(),
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// ProcessInbox renders every *.txt file in the inbox. Each file gets a fresh
// store seeded with the fallback structure, so files never see each other's
// terms. A rendered source leaves the inbox as soon as its chart is written;
// the pass then archives the sources it rendered as one block.
func (p *Processor) ProcessInbox() (Stats, error) {
	var stats Stats
	paths, err := filepath.Glob(filepath.Join(p.root, DirInbox, "*.txt"))
	if err != nil {
		return stats, err
	}

	var rendered []source
	for _, path := range paths {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			p.log.Warn().Err(err).Str("file", name).Msg("read failed")
			continue
		}

		chart, err := p.render(name, string(data))
		p.metrics.ObserveParse(err)
		if err != nil {
			if rerr := p.reject(path, name, err); rerr != nil {
				return stats, rerr
			}
			stats.Rejected++
			p.countFile("rejected")
			p.log.Info().Str("file", name).Str("reason", err.Error()).Msg("term sheet rejected")
			continue
		}

		if err := p.writeChart(name, chart); err != nil {
			return stats, err
		}
		if err := os.Remove(path); err != nil {
			return stats, fmt.Errorf("remove %s: %w", name, err)
		}
		p.metrics.ObserveChart(string(chart.State.Variant))
		p.countFile("charted")
		for _, w := range chart.Warnings {
			p.log.Warn().Str("file", name).Str("rule", w.Rule).Msg(w.Message)
		}
		rendered = append(rendered, source{name: name, data: data})
		stats.Charted++
	}

	if len(rendered) == 0 {
		return stats, nil
	}
	blockID, err := archiveSources(p.root, rendered, p.now())
	if err != nil {
		return stats, fmt.Errorf("archive: %w", err)
	}
	stats.Block = blockID
	p.log.Info().Int("files", len(rendered)).Str("block", blockID).Msg("archived rendered term sheets")
	return stats, nil
}

func (p *Processor) render(name, text string) (Chart, error) {
	store, err := session.NewStore(p.reg, p.fallback)
	if err != nil {
		return Chart{}, err
	}
	if _, err := store.ParseAndApply(text); err != nil {
		return Chart{}, err
	}
	chart := Chart{
		Source:   name,
		State:    store.Snapshot(),
		Geometry: store.Geometry(),
	}
	if p.strict {
		chart.Warnings = payoff.Check(store.Variant(), store.Params())
	}
	return chart, nil
}

func (p *Processor) writeChart(name string, chart Chart) error {
	out := filepath.Join(p.root, DirCharts, strings.TrimSuffix(name, filepath.Ext(name))+".json")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.Encode(f, export.JSON, chart); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (p *Processor) reject(path, name string, cause error) error {
	dir := filepath.Join(p.root, DirRejected)
	if err := os.Rename(path, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("move %s to rejected: %w", name, err)
	}
	reason := strings.TrimSuffix(name, filepath.Ext(name)) + ".reason"
	return os.WriteFile(filepath.Join(dir, reason), []byte(cause.Error()+"\n"), 0644)
}

func (p *Processor) countFile(result string) {
	if p.metrics != nil {
		p.metrics.InboxProcessed.WithLabelValues(result).Inc()
	}
}

// killed reports (and consumes) the kill switch.
func (p *Processor) killed() bool {
	killPath := filepath.Join(p.root, killFile)
	if _, err := os.Stat(killPath); err != nil {
		return false
	}
	os.Remove(killPath)
	return true
}

// Run polls the inbox every interval until ctx is done or the kill switch
// appears. Pass errors are logged, not returned.
func (p *Processor) Run(ctx context.Context, interval time.Duration) error {
	p.log.Info().Str("root", p.root).Dur("interval", interval).Msg("watcher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if p.killed() {
				p.log.Info().Msg("kill switch activated, shutting down...")
				return nil
			}
			if _, err := p.ProcessInbox(); err != nil {
				p.log.Error().Err(err).Msg("inbox pass failed")
			}
		}
	}
}
