package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tripplanner/internal/services"
)

type planFlags struct {
	origin, destination string
	departure, ret      string
	travelers           int
	costWeight          float64
	timeWeight          float64
	output              string
	pdf                 string
	format              string
	noPrint             bool
}

func newPlanCmd(a *app) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Gather candidates and print the optimized itinerary",
		Long: `Gather flights, hotels and activities from every configured source,
optimize the itinerary and save it as JSON.

Dates default to 30 days from today with a 7 day trip. Weights default to the
configuration file (0.6 cost / 0.4 time).

Examples:
  tripplanner plan --origin "New York" --destination Paris
  tripplanner plan --departure-date 2025-06-01 --return-date 2025-06-08 --cost-weight 0.8 --time-weight 0.2
  tripplanner plan --no-print --output trip.json --pdf trip.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runPlan(ctx, cmd, a, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.origin, "origin", "", "Departure city (default from config)")
	fl.StringVar(&f.destination, "destination", "", "Destination city (default from config)")
	fl.StringVar(&f.departure, "departure-date", "", "Departure date (YYYY-MM-DD)")
	fl.StringVar(&f.ret, "return-date", "", "Return date (YYYY-MM-DD)")
	fl.IntVar(&f.travelers, "travelers", 0, "Number of travelers (default from config)")
	fl.Float64Var(&f.costWeight, "cost-weight", 0, "Weight for cost optimization (0.0-1.0)")
	fl.Float64Var(&f.timeWeight, "time-weight", 0, "Weight for time optimization (0.0-1.0)")
	fl.StringVar(&f.output, "output", "", "Output JSON file (default from config, \"-\" to skip)")
	fl.StringVar(&f.pdf, "pdf", "", "Also write the itinerary as a PDF file")
	fl.StringVar(&f.format, "format", "", "Console output: text, json or none (default text on a terminal, json otherwise)")
	fl.BoolVar(&f.noPrint, "no-print", false, "Don't print the itinerary to the console")
	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, a *app, f planFlags) error {
	req := services.PlanRequest{
		Origin:        f.origin,
		Destination:   f.destination,
		DepartureDate: f.departure,
		ReturnDate:    f.ret,
		Travelers:     f.travelers,
	}
	req.CostWeight = changedFloat(cmd.Flags(), "cost-weight", &f.costWeight)
	req.TimeWeight = changedFloat(cmd.Flags(), "time-weight", &f.timeWeight)

	svc := services.PlannerService{
		Config:   a.cfg,
		Gatherer: a.newGatherer(nil, nil),
		Logger:   a.logger,
	}
	res, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}

	format := f.format
	if format == "" {
		format = defaultFormat(f.noPrint)
	}
	output := f.output
	if output == "" {
		output = a.cfg.OutputFile
	}
	title := fmt.Sprintf("%s -> %s", orDefault(f.origin, a.cfg.Defaults.Origin), orDefault(f.destination, a.cfg.Defaults.Destination))
	return emit(cmd.OutOrStdout(), res.Itinerary, format, output, f.pdf, title)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
