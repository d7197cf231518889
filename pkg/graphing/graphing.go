// Package graphing renders exported results as a single HTML page of charts.
package graphing

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/utils"
)

// Kinds of records the generator knows how to chart.
const (
	KindRepTest    = "reptest"
	KindProfile    = "profile"
	KindPageFaults = "pagefaults"
)

// ErrNoCharts is returned when the input holds nothing chartable.
var ErrNoCharts = errors.New("no charts generated")

// Generator creates an HTML chart page from an exported results file.
type Generator struct {
	inputPath string
	outputDir string
	logger    *slog.Logger
}

// NewGenerator creates a new graph generator.
func NewGenerator(inputPath, outputDir string) (*Generator, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	return &Generator{
		inputPath: inputPath,
		outputDir: outputDir,
		logger:    slog.Default(),
	}, nil
}

// Generate writes <session>-graphs.html into the output directory and
// returns its path.
func (g *Generator) Generate() (string, error) {
	records, err := exporting.LoadRecords(g.inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: %s holds no records", ErrNoCharts, g.inputPath)
	}

	groups := groupByKind(records)
	summary := summarize(records, groups)

	page := components.NewPage()
	page.PageTitle = "perfh results - " + summary.Session

	added := 0
	if rs := groups[KindRepTest]; len(rs) > 0 {
		page.AddCharts(createTimingBar(rs))
		added++
		if bar := createThroughputBar(rs); bar != nil {
			page.AddCharts(bar)
			added++
		}
	}
	if rs := groups[KindProfile]; len(rs) > 0 {
		page.AddCharts(createProfilePie(rs))
		added++
	}
	if rs := groups[KindPageFaults]; len(rs) > 0 {
		page.AddCharts(createFaultLine(rs))
		added++
	}
	if added == 0 {
		return "", fmt.Errorf("%w: unrecognised records in %s", ErrNoCharts, g.inputPath)
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render charts: %w", err)
	}
	html, err := injectSummary(buf.String(), summary)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(g.outputDir, summary.Session+"-graphs.html")
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	g.logger.Info("generated graphs", "path", out, "charts", added)
	return out, nil
}

// RenderFile is a shorthand for NewGenerator(input, outputDir).Generate().
func RenderFile(input, outputDir string) (string, error) {
	g, err := NewGenerator(input, outputDir)
	if err != nil {
		return "", err
	}
	return g.Generate()
}

// groupByKind uses the kind column when present and the record's columns
// otherwise.
func groupByKind(records []exporting.Record) map[string][]exporting.Record {
	groups := make(map[string][]exporting.Record)
	for _, r := range records {
		kind := utils.ToString(r[exporting.FieldKind])
		if kind == "" {
			kind = detectKind(r)
		}
		groups[kind] = append(groups[kind], r)
	}
	return groups
}

func detectKind(r exporting.Record) string {
	switch {
	case has(r, "best_ms"):
		return KindRepTest
	case has(r, "exclusive_ticks"):
		return KindProfile
	case has(r, "page") && has(r, "faults"):
		return KindPageFaults
	default:
		return ""
	}
}

func has(r exporting.Record, key string) bool {
	_, ok := r[key]
	return ok
}

func summarize(records []exporting.Record, groups map[string][]exporting.Record) Summary {
	s := Summary{Records: len(records)}

	sessions := make(map[string]bool)
	for _, r := range records {
		if id := utils.ToString(r[exporting.FieldSession]); id != "" {
			sessions[id] = true
		}
		if s.Hostname == "" {
			s.Hostname = utils.ToString(r[exporting.FieldHostname])
		}
	}
	switch len(sessions) {
	case 0:
		s.Session = "results"
	case 1:
		for id := range sessions {
			s.Session = id
		}
	default:
		s.Session = "multi"
	}

	for kind, rs := range groups {
		if kind == "" {
			kind = "other"
		}
		s.Kinds = append(s.Kinds, KindCount{Kind: kind, Count: len(rs)})
	}
	sort.Slice(s.Kinds, func(i, j int) bool { return s.Kinds[i].Kind < s.Kinds[j].Kind })

	for _, r := range groups[KindRepTest] {
		s.Benchmarks = append(s.Benchmarks, BenchmarkRow{
			Name:   utils.ToString(r["name"]),
			Status: utils.ToString(r["status"]),
			Trials: utils.ToUint64(r["trials"]),
			BestMs: utils.ToFloat64(r["best_ms"]),
			Error:  utils.ToString(r["error"]),
		})
	}
	return s
}
