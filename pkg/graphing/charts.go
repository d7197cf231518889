package graphing

import (
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/utils"
)

var chartSize = opts.Initialization{Width: "100%", Height: "400px"}

// createTimingBar shows best, average and worst trial time per benchmark.
func createTimingBar(records []exporting.Record) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Trial time", Subtitle: "milliseconds, lower is better"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "ms"}),
		charts.WithInitializationOpts(chartSize),
	)

	bar.SetXAxis(benchmarkNames(records)).
		AddSeries("best", barData(records, "best_ms")).
		AddSeries("average", barData(records, "avg_ms")).
		AddSeries("worst", barData(records, "worst_ms"))
	return bar
}

// createThroughputBar shows MiB/s per benchmark, or nil when no benchmark
// moved bytes.
func createThroughputBar(records []exporting.Record) *charts.Bar {
	var withBytes []exporting.Record
	for _, r := range records {
		if _, ok := r["best_mibs"]; ok {
			withBytes = append(withBytes, r)
		}
	}
	if len(withBytes) == 0 {
		return nil
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Throughput", Subtitle: "MiB/s, higher is better"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "MiB/s"}),
		charts.WithInitializationOpts(chartSize),
	)

	bar.SetXAxis(benchmarkNames(withBytes)).
		AddSeries("best", barData(withBytes, "best_mibs")).
		AddSeries("average", barData(withBytes, "avg_mibs")).
		AddSeries("worst", barData(withBytes, "worst_mibs"))
	return bar
}

// createProfilePie shows each label's share of exclusive time.
func createProfilePie(records []exporting.Record) *charts.Pie {
	data := make([]opts.PieData, 0, len(records))
	var total float64
	for _, r := range records {
		pct := utils.ToFloat64(r["percent"])
		total += pct
		data = append(data, opts.PieData{Name: utils.ToString(r["label"]), Value: pct})
	}
	sort.Slice(data, func(i, j int) bool {
		return utils.ToFloat64(data[i].Value) > utils.ToFloat64(data[j].Value)
	})
	if rest := 100 - total; rest > 0.005 {
		data = append(data, opts.PieData{Name: "unprofiled", Value: rest})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Exclusive time",
			Subtitle: fmt.Sprintf("%.2f ms total", utils.ToFloat64(records[0]["total_ms"])),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithInitializationOpts(chartSize),
	)
	pie.AddSeries("exclusive", data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}%"}),
	)
	return pie
}

// createFaultLine plots cumulative page faults against touched pages, one
// series per touch order.
func createFaultLine(records []exporting.Record) *charts.Line {
	series := make(map[string][]exporting.Record)
	maxPage := int64(0)
	for _, r := range records {
		order := utils.ToString(r["order"])
		series[order] = append(series[order], r)
		if p := int64(utils.ToFloat64(r["page"])); p > maxPage {
			maxPage = p
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Page faults", Subtitle: "cumulative faults per touched page"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "pages"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "faults"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(chartSize),
	)

	xLabels := make([]string, maxPage)
	for i := range xLabels {
		xLabels[i] = fmt.Sprint(i + 1)
	}
	line.SetXAxis(xLabels)

	orders := make([]string, 0, len(series))
	for o := range series {
		orders = append(orders, o)
	}
	sort.Strings(orders)
	for _, o := range orders {
		rs := series[o]
		sort.Slice(rs, func(i, j int) bool {
			return utils.ToFloat64(rs[i]["page"]) < utils.ToFloat64(rs[j]["page"])
		})
		data := make([]opts.LineData, 0, len(rs))
		for _, r := range rs {
			data = append(data, opts.LineData{Value: utils.ToFloat64(r["faults"])})
		}
		line.AddSeries(o, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func benchmarkNames(records []exporting.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = utils.ToString(r["name"])
	}
	return names
}

func barData(records []exporting.Record, key string) []opts.BarData {
	data := make([]opts.BarData, len(records))
	for i, r := range records {
		data[i] = opts.BarData{Value: utils.ToFloat64(r[key])}
	}
	return data
}
