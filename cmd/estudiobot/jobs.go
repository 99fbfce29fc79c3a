package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/quotes"
	"github.com/acuellar/estudiobot/internal/scheduler"
	"github.com/acuellar/estudiobot/internal/telegram"
)

// newCheckCommand runs one iteration of the per-minute reminder check, useful
// for verifying a deployment without waiting for the trigger.
func newCheckCommand() *cobra.Command {
	var storeBackend StoreFlag
	checkCommand := &cobra.Command{
		Use:   "check",
		Short: "Run one reminder check for the current minute",
		RunE: func(cmd *cobra.Command, args []string) error {
			reminders, cleanup, err := buildScheduler(storeBackend)
			if err != nil {
				return err
			}
			defer cleanup()

			return reminders.RunMinuteCheck(cmd.Context(), time.Now())
		},
	}
	checkCommand.Flags().Var(&storeBackend, "store", "Persistence backend. Options: file, mysql")
	return checkCommand
}

// newReportCommand sends the weekly summary immediately.
func newReportCommand() *cobra.Command {
	var storeBackend StoreFlag
	reportCommand := &cobra.Command{
		Use:   "report",
		Short: "Send the weekly summary to every subscribed user now",
		RunE: func(cmd *cobra.Command, args []string) error {
			reminders, cleanup, err := buildScheduler(storeBackend)
			if err != nil {
				return err
			}
			defer cleanup()

			return reminders.RunWeeklyReport(cmd.Context())
		},
	}
	reportCommand.Flags().Var(&storeBackend, "store", "Persistence backend. Options: file, mysql")
	return reportCommand
}

func buildScheduler(storeBackend StoreFlag) (*scheduler.Scheduler, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dataStore, closeStore, err := buildStore(cfg, storeBackend)
	if err != nil {
		return nil, nil, err
	}

	taskSource := buildTaskSource(cfg)
	picker, err := quotes.New()
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("quotes.New > %w", err)
	}
	reportDay, err := scheduler.ParseWeekday(cfg.Report.Day)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("scheduler.ParseWeekday > %w", err)
	}

	reminders := scheduler.New(scheduler.Params{
		Store:      dataStore,
		Source:     taskSource,
		Notifier:   telegram.NewClient(cfg.Telegram.Token),
		Ledger:     ledger.New(dataStore),
		Quotes:     picker,
		ReportDay:  reportDay,
		ReportTime: cfg.Report.Time,
	})
	cleanup := func() {
		_ = taskSource.Close()
		_ = closeStore()
	}
	return reminders, cleanup, nil
}
