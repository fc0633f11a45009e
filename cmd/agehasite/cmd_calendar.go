package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agehasite/internal/calendar"
	"agehasite/internal/tui"
)

var (
	calendarMonth string
	calendarPlain bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the event calendar in the terminal",
	Long: `Fetches the event feed and shows one month.

Interactive keys: arrows or hjkl move, n/p change month, enter opens the
selected day's event, q quits. Use --plain for text output.`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show as YYYY-MM (default: current month)")
	calendarCmd.Flags().BoolVar(&calendarPlain, "plain", false, "Print the month as plain text and exit")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := conf.Location()
	now := time.Now().In(loc)
	month := calendar.MonthOf(now)
	if calendarMonth != "" {
		m, err := calendar.ParseMonth(calendarMonth)
		if err != nil {
			return err
		}
		month = m
	}

	source := newEventSources(conf).fetcher()

	if calendarPlain {
		events := source.FetchEvents(ctx)
		_, err := fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlain(month, calendar.NewIndex(events)))
		return err
	}

	return tui.Run(ctx, tui.New(source.FetchEvents, now).WithMonth(month))
}
