package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acuellar/estudiobot/internal/bootstrap"
	"github.com/acuellar/estudiobot/internal/bot"
	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/quotes"
	"github.com/acuellar/estudiobot/internal/scheduler"
	"github.com/acuellar/estudiobot/internal/server"
	"github.com/acuellar/estudiobot/internal/telegram"
)

func newServeCommand() *cobra.Command {
	var storeBackend StoreFlag
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the reminder scheduler and the liveness probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dataStore, closeStore, err := buildStore(cfg, storeBackend)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			taskSource := buildTaskSource(cfg)
			defer func() {
				_ = taskSource.Close()
			}()

			picker, err := quotes.New()
			if err != nil {
				return fmt.Errorf("quotes.New > %w", err)
			}

			reportDay, err := scheduler.ParseWeekday(cfg.Report.Day)
			if err != nil {
				return fmt.Errorf("scheduler.ParseWeekday > %w", err)
			}

			telegramClient := telegram.NewClient(cfg.Telegram.Token)
			studyLedger := ledger.New(dataStore)

			reminders := scheduler.New(scheduler.Params{
				Store:      dataStore,
				Source:     taskSource,
				Notifier:   telegramClient,
				Ledger:     studyLedger,
				Quotes:     picker,
				ReportDay:  reportDay,
				ReportTime: cfg.Report.Time,
			})
			commands := bot.New(bot.Params{
				Updates:  telegramClient,
				Notifier: telegramClient,
				Store:    dataStore,
				Ledger:   studyLedger,
				Source:   taskSource,
				Quotes:   picker,
			})
			health := server.NewHealth(cfg.Server.Port)

			app := bootstrap.New()
			app.Add(commands.Run)
			app.Add(reminders.Run)
			app.Add(health.Run)
			return app.Run(cmd.Context())
		},
	}
	serveCommand.Flags().Var(&storeBackend, "store", "Persistence backend. Options: file, mysql")
	return serveCommand
}
