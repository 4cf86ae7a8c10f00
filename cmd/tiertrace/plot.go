package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/fjl/tiertrace"
)

var (
	plotWidth  float64
	plotHeight float64
	plotTypes  []string
	plotOutDir string
	plotFormat string
)

var plotCmd = &cobra.Command{
	Use:   "plot [trace files or directories]",
	Short: "Render comparison charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		pc := cfg.Plot
		if cmd.Flags().Changed("width") || pc.Width == 0 {
			pc.Width = plotWidth
		}
		if cmd.Flags().Changed("height") || pc.Height == 0 {
			pc.Height = plotHeight
		}
		if cmd.Flags().Changed("type") || len(pc.Types) == 0 {
			pc.Types = plotTypes
		}
		if cmd.Flags().Changed("out-dir") || pc.OutDir == "" {
			pc.OutDir = plotOutDir
		}
		if cmd.Flags().Changed("format") || pc.Format == "" {
			pc.Format = plotFormat
		}
		for _, t := range pc.Types {
			if charts[t] == nil {
				return fmt.Errorf("unknown plot type %q (want %s)", t, strings.Join(chartNames(), ", "))
			}
		}

		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(pc.OutDir, 0755); err != nil {
			return fmt.Errorf("can't create output dir: %w", err)
		}
		for _, t := range pc.Types {
			plots, err := charts[t](ds)
			if err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
			for name, plt := range plots {
				file := filepath.Join(pc.OutDir, name+"."+pc.Format)
				if err := plt.Save(vg.Length(pc.Width)*vg.Centimeter, vg.Length(pc.Height)*vg.Centimeter, file); err != nil {
					return err
				}
				logrus.Infof("Wrote %s", file)
			}
		}
		return nil
	},
}

func init() {
	plotCmd.Flags().Float64Var(&plotWidth, "width", 24, "Width of each plot in cm")
	plotCmd.Flags().Float64Var(&plotHeight, "height", 12, "Height of each plot in cm")
	plotCmd.Flags().StringSliceVar(&plotTypes, "type", []string{"ratios", "difference", "overall"}, "Charts to render ("+strings.Join(chartNames(), ", ")+")")
	plotCmd.Flags().StringVar(&plotOutDir, "out-dir", "plots", "Output directory")
	plotCmd.Flags().StringVar(&plotFormat, "format", "png", "Image format (png, svg, pdf)")
}

// chartFunc builds named plots from a dataset.
type chartFunc func(*tiertrace.Dataset) (map[string]*plot.Plot, error)

var charts = map[string]chartFunc{
	"ratios":     plotRatios,
	"difference": comparisonChart("difference", "actual - estimated hit ratio", hitRatioDifference),
	"pages":      comparisonChart("pages", "pages accessed", pagesAccessed),
	"accesses":   comparisonChart("accesses", "total access count", totalAccesses),
	"overall":    plotOverall,
}

func chartNames() []string {
	return []string{"ratios", "difference", "pages", "accesses", "overall"}
}

// seriesXY plots X = timestamp against Y = a per-interval value.
type seriesXY struct {
	records []tiertrace.NormalizedRecord
	y       func(tiertrace.NormalizedRecord) float64
}

func (s seriesXY) Len() int {
	return len(s.records)
}

func (s seriesXY) XY(i int) (float64, float64) {
	return s.records[i].Timestamp, s.y(s.records[i])
}

func hitRatio(m tiertrace.Method) func(tiertrace.NormalizedRecord) float64 {
	return func(r tiertrace.NormalizedRecord) float64 { return m.Ratio(r.IntervalRecord) }
}

func hitRatioDifference(r tiertrace.NormalizedRecord) float64 { return r.HitRatioDifference }
func pagesAccessed(r tiertrace.NormalizedRecord) float64      { return float64(r.PagesAccessed) }
func totalAccesses(r tiertrace.NormalizedRecord) float64      { return float64(r.TotalAccessCount) }

func timeAxisLabel(basis ...tiertrace.Basis) string {
	for _, b := range basis {
		if !b.Seconds() {
			return "interval"
		}
	}
	return "time (s)"
}

func addLine(plt *plot.Plot, name string, i int, xy plotter.XYer) error {
	l, err := plotter.NewLine(xy)
	if err != nil {
		return err
	}
	l.Color = plotutil.Color(i)
	l.Dashes = plotutil.Dashes(i)
	plt.Add(l)
	plt.Legend.Add(name, l)
	return nil
}

// plotRatios renders one chart per workload with the hit ratio of every
// method over time.
func plotRatios(ds *tiertrace.Dataset) (map[string]*plot.Plot, error) {
	plots := make(map[string]*plot.Plot)
	for _, w := range ds.Workloads {
		if len(w.Records) == 0 {
			logrus.Warnf("Workload %s has 0 intervals", w.ID)
			continue
		}
		plt := plot.New()
		plt.Title.Text = w.ID
		plt.X.Label.Text = timeAxisLabel(w.Basis)
		plt.Y.Label.Text = "DRAM hit ratio"
		plt.Legend.Top = true
		plt.Add(plotter.NewGrid())
		for i, m := range tiertrace.Methods {
			if err := addLine(plt, m.String(), i, seriesXY{w.Records, hitRatio(m)}); err != nil {
				return nil, err
			}
		}
		plots[w.ID+"-ratios"] = plt
	}
	return plots, nil
}

// comparisonChart renders one chart with a line per workload.
func comparisonChart(name, ylabel string, y func(tiertrace.NormalizedRecord) float64) chartFunc {
	return func(ds *tiertrace.Dataset) (map[string]*plot.Plot, error) {
		plt := plot.New()
		plt.Y.Label.Text = ylabel
		plt.Legend.Top = true
		plt.Add(plotter.NewGrid())
		var bases []tiertrace.Basis
		for i, w := range ds.Workloads {
			if len(w.Records) == 0 {
				logrus.Warnf("Workload %s has 0 intervals", w.ID)
				continue
			}
			bases = append(bases, w.Basis)
			if err := addLine(plt, w.ID, i, seriesXY{w.Records, y}); err != nil {
				return nil, err
			}
		}
		plt.X.Label.Text = timeAxisLabel(bases...)
		return map[string]*plot.Plot{name: plt}, nil
	}
}

// plotOverall renders a grouped bar chart of each workload's overall hit
// ratio per method. Workloads without accesses have no defined ratio and are
// left out.
func plotOverall(ds *tiertrace.Dataset) (map[string]*plot.Plot, error) {
	var (
		names  []string
		values [len(tiertrace.Methods)]plotter.Values
	)
	for _, w := range ds.Workloads {
		s := w.Summary()
		if _, ok := s.OverallHitRatio(tiertrace.MethodActual); !ok {
			logrus.Warnf("Workload %s has no accesses, leaving it out of the overall chart", w.ID)
			continue
		}
		names = append(names, w.ID)
		for i, m := range tiertrace.Methods {
			r, _ := s.OverallHitRatio(m)
			values[i] = append(values[i], r)
		}
	}
	plt := plot.New()
	plt.Y.Label.Text = "overall DRAM hit ratio"
	plt.Legend.Top = true
	if len(names) == 0 {
		return map[string]*plot.Plot{"overall": plt}, nil
	}
	width := vg.Points(12)
	for i, m := range tiertrace.Methods {
		bars, err := plotter.NewBarChart(values[i], width)
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(i-1) * width
		plt.Add(bars)
		plt.Legend.Add(m.String(), bars)
	}
	plt.NominalX(names...)
	return map[string]*plot.Plot{"overall": plt}, nil
}
