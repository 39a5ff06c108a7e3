package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tripplanner/internal/services"
)

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		input      string
		costWeight float64
		timeWeight float64
		output     string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize an itinerary from a candidates JSON file",
		Long: `Run the optimizer over flights, hotels and activities read from a JSON
document with the fields flights, hotels, activities, departure_date,
return_date and optionally cost_weight and time_weight.

Examples:
  tripplanner optimize --input candidates.json
  cat candidates.json | tripplanner optimize --input - --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readOptimizeRequest(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			if w := changedFloat(cmd.Flags(), "cost-weight", &costWeight); w != nil {
				req.CostWeight = w
			}
			if w := changedFloat(cmd.Flags(), "time-weight", &timeWeight); w != nil {
				req.TimeWeight = w
			}

			svc := services.PlannerService{Config: a.cfg, Logger: a.logger}
			it, err := svc.Optimize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if format == "" {
				format = defaultFormat(false)
			}
			return emit(cmd.OutOrStdout(), it, format, output, "", "")
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&input, "input", "-", "Candidates JSON file (\"-\" for stdin)")
	fl.Float64Var(&costWeight, "cost-weight", 0, "Weight for cost optimization (0.0-1.0)")
	fl.Float64Var(&timeWeight, "time-weight", 0, "Weight for time optimization (0.0-1.0)")
	fl.StringVar(&output, "output", "", "Output JSON file")
	fl.StringVar(&format, "format", "", "Console output: text, json or none")
	return cmd
}

func readOptimizeRequest(stdin io.Reader, path string) (services.OptimizeRequest, error) {
	var req services.OptimizeRequest

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open candidates: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode candidates: %w", err)
	}
	return req, nil
}
