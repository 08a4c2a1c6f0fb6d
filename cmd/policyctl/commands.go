package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
)

// readingFlags are shared by every evaluating subcommand.
type readingFlags struct {
	sector   string
	timezone string
	at       string
	pm25     float64
	pm10     float64
	traffic  float64
	wind     float64
}

func (f *readingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sector, "sector", "", "Sector name; its category words (Industrial, Residential, Commercial) steer the rules")
	cmd.Flags().StringVar(&f.timezone, "tz", "Asia/Kolkata", "Time zone for hour-of-day effects")
	cmd.Flags().StringVar(&f.at, "at", "", "Evaluate as of this RFC3339 time instead of now")
	cmd.Flags().Float64Var(&f.pm25, "pm25", 0, "PM2.5 in µg/m³")
	cmd.Flags().Float64Var(&f.pm10, "pm10", 0, "PM10 in µg/m³")
	cmd.Flags().Float64Var(&f.traffic, "traffic", 0, "Traffic index in [0, 1]")
	cmd.Flags().Float64Var(&f.wind, "wind", 2.0, "Wind speed in m/s")
}

func (f *readingFlags) measurement() (domain.Measurement, error) {
	m := domain.Measurement{PM25: f.pm25, PM10: f.pm10, TrafficIndex: f.traffic, WindSpeed: f.wind}
	if err := m.Validate(); err != nil {
		return domain.Measurement{}, err
	}
	return m, nil
}

func (f *readingFlags) engine() (*engine.Engine, error) {
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz: %w", err)
	}
	clock := clockwork.NewRealClock()
	if f.at != "" {
		t, err := time.Parse(time.RFC3339, f.at)
		if err != nil {
			return nil, fmt.Errorf("invalid --at: %w", err)
		}
		clock = clockwork.NewFakeClockAt(t)
	}
	return engine.New(clock, loc, observability.NewMetricsForTesting()), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "policyctl",
		Short: "Evaluate air-quality readings against the policy rules",
		Long: `policyctl classifies a pm2.5/pm10 reading, selects the recommended
intervention and projects the impact of any intervention on it.

All output is JSON.`,
		SilenceUsage: true,
	}
	root.AddCommand(newClassifyCmd(), newRecommendCmd(), newSimulateCmd(), newInterventionsCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	var f readingFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Report the severity tier and dominant cause of a reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := f.measurement()
			if err != nil {
				return err
			}
			eng, err := f.engine()
			if err != nil {
				return err
			}
			return printJSON(cmd, eng.Classify(m, domain.Category(f.sector)))
		},
	}
	f.register(cmd)
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var f readingFlags
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Select the intervention for a reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := f.measurement()
			if err != nil {
				return err
			}
			eng, err := f.engine()
			if err != nil {
				return err
			}
			return printJSON(cmd, eng.Recommend(m, domain.Category(f.sector)))
		},
	}
	f.register(cmd)
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var (
		f      readingFlags
		policy string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project the pm2.5 impact of an intervention",
		Long: `Project the pm2.5 impact of an intervention.

Without --policy the recommended intervention for the reading is simulated.
Unknown intervention names are simulated with a conservative default range.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := f.measurement()
			if err != nil {
				return err
			}
			eng, err := f.engine()
			if err != nil {
				return err
			}
			category := domain.Category(f.sector)
			if policy == "" {
				rec := eng.Recommend(m, category)
				if !rec.HasPolicy {
					return printJSON(cmd, rec)
				}
				policy = rec.Policy.Name
			}
			return printJSON(cmd, eng.SimulateMeasurement(m, category, policy))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&policy, "policy", "", "Intervention name")
	return cmd
}

func newInterventionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interventions",
		Short: "List interventions with their published effectiveness ranges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type entry struct {
				Name  string                    `json:"name"`
				Range domain.EffectivenessRange `json:"range"`
			}
			var out []entry
			for _, name := range domain.Interventions() {
				r, _ := domain.Effectiveness(name)
				out = append(out, entry{Name: name, Range: r})
			}
			return printJSON(cmd, out)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
