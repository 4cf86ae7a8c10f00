package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjl/tiertrace"
)

var (
	summaryJSON  bool
	summaryStore string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [trace files or directories]",
	Short: "Print whole-run hit ratios per workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		store := summaryStore
		if store == "" {
			store = cfg.Store
		}
		if store != "" {
			s, err := tiertrace.OpenStore(store)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Put(ds); err != nil {
				return fmt.Errorf("writing summaries: %w", err)
			}
			logrus.Infof("Stored %d summaries in %s", len(ds.Workloads), store)
		}
		if summaryJSON {
			return writeSummaryJSON(os.Stdout, ds)
		}
		return writeSummaryTable(os.Stdout, ds)
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output as JSON instead of table")
	summaryCmd.Flags().StringVar(&summaryStore, "store", "", "Also save summaries to this database directory")
}

// ratioString formats a possibly undefined ratio.
func ratioString(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func paramString(cfg tiertrace.WorkloadConfig, get func(*tiertrace.TierParams) float64) string {
	if cfg.Params == nil {
		return "-"
	}
	return strconv.FormatFloat(get(cfg.Params), 'f', -1, 64)
}

func writeSummaryTable(out io.Writer, ds *tiertrace.Dataset) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKLOAD\tSCAN MS\tSUB MS\tCAPACITY %\tINTERVALS\tDURATION\tACCESSES\tACTUAL\tESTIMATED\tPTS\tMEAN DIFF")
	for _, wl := range ds.Workloads {
		s := wl.Summary()
		duration := strconv.FormatFloat(s.Duration, 'f', 3, 64)
		if wl.Basis.Seconds() {
			duration += "s"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\t%.4f\n",
			wl.Config.BaseName,
			paramString(wl.Config, func(p *tiertrace.TierParams) float64 { return p.ScanIntervalMs }),
			paramString(wl.Config, func(p *tiertrace.TierParams) float64 { return p.SubIntervalMs }),
			paramString(wl.Config, func(p *tiertrace.TierParams) float64 { return p.CapacityPercent }),
			s.Intervals,
			duration,
			s.TotalAccesses,
			ratioString(s.OverallHitRatio(tiertrace.MethodActual)),
			ratioString(s.OverallHitRatio(tiertrace.MethodEstimated)),
			ratioString(s.OverallHitRatio(tiertrace.MethodPTS)),
			s.MeanDifference,
		)
	}
	return w.Flush()
}

// summaryOutput is the JSON form of one workload. Undefined ratios are null.
type summaryOutput struct {
	ID            string                   `json:"id"`
	Config        tiertrace.WorkloadConfig `json:"config"`
	Basis         string                   `json:"timeline_basis"`
	Intervals     int                      `json:"intervals"`
	Duration      float64                  `json:"duration"`
	TotalAccesses int64                    `json:"total_accesses"`
	TotalHits     map[string]float64       `json:"total_hits"`
	OverallRatio  map[string]*float64      `json:"overall_hit_ratio"`
	Spread        map[string]*float64      `json:"hit_ratio_spread"`
}

func newSummaryOutput(wl *tiertrace.Workload) summaryOutput {
	s := wl.Summary()
	o := summaryOutput{
		ID:            wl.ID,
		Config:        wl.Config,
		Basis:         wl.Basis.String(),
		Intervals:     s.Intervals,
		Duration:      s.Duration,
		TotalAccesses: s.TotalAccesses,
		TotalHits:     make(map[string]float64),
		OverallRatio:  make(map[string]*float64),
		Spread:        make(map[string]*float64),
	}
	for _, m := range tiertrace.Methods {
		o.TotalHits[m.String()] = s.TotalHits[m]
		o.OverallRatio[m.String()] = optional(s.OverallHitRatio(m))
		o.Spread[m.String()] = optional(s.Spread(m))
	}
	return o
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func writeSummaryJSON(out io.Writer, ds *tiertrace.Dataset) error {
	all := make([]summaryOutput, len(ds.Workloads))
	for i, wl := range ds.Workloads {
		all[i] = newSummaryOutput(wl)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(all)
}
