// Command report renders the dashboard as an offline xlsx workbook, useful
// for sharing a snapshot without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pulseapi/internal/analytics"
	"pulseapi/internal/dataset"
	"pulseapi/internal/exporter"
	"pulseapi/internal/services"
)

func main() {
	var (
		dataDir = flag.String("data", "data", "directory holding the aggregated CSV datasets")
		output  = flag.String("out", "pulse-report.xlsx", "output workbook path")
		state   = flag.String("state", "", "optional state filter")
		metric  = flag.String("metric", "count", "ranking metric: count or amount")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*dataDir, *output, *state, *metric, logger); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("report written", slog.String("path", *output))
}

func run(dataDir, output, state, metric string, logger *slog.Logger) error {
	m := analytics.Metric(metric)
	if !m.Valid() {
		return fmt.Errorf("unknown metric %q", metric)
	}

	ctx := context.Background()
	store := dataset.NewStore(dataDir, logger)
	svc := services.NewDashboardService(store, logger)
	filter := analytics.Filter{State: state}

	summary, err := svc.Summary(ctx)
	if err != nil {
		return err
	}
	printSummary(summary)

	transactions, err := svc.Transactions(ctx, filter, m)
	if err != nil {
		return err
	}
	users, err := svc.Users(ctx, filter)
	if err != nil {
		return err
	}
	insurance, err := svc.Insurance(ctx, filter, m)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	return exporter.NewExcelExporter(logger).Write(f, &exporter.Report{
		Summary:      summary,
		Transactions: transactions,
		Users:        users,
		Insurance:    insurance,
	})
}

func printSummary(s *services.SummaryStats) {
	fmt.Printf("Transactions:      %s (%s)\n",
		s.Formatted["total_transactions"], s.Formatted["total_transaction_amount"])
	fmt.Printf("Registered users:  %s\n", s.Formatted["total_registered_users"])
	fmt.Printf("App opens:         %s\n", s.Formatted["total_app_opens"])
	fmt.Printf("Insurance:         %s (%s)\n",
		s.Formatted["total_insurance_count"], s.Formatted["total_insurance_amount"])
	fmt.Printf("States covered:    %d\n", s.StatesCovered)
	if s.YearsCovered != "" {
		fmt.Printf("Years covered:     %s\n", s.YearsCovered)
	}
}
