package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"agehasite/internal/chat"
	"agehasite/internal/config"
	"agehasite/internal/feed"
	appLog "agehasite/internal/log"
	"agehasite/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the website",
	Long: `Serves the page and its APIs, refreshes the event feed on the
configured cron schedule and reloads the config file when it changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveListen != "" {
		conf.Listen = serveListen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"feed_configured", conf.Feed.URL != "",
		"feed_refresh", conf.Feed.Refresh,
		"calendar_subscriptions", len(conf.Feed.Calendars),
		"chat_enabled", conf.Chat.Enabled,
		"chat_model", conf.Chat.Model,
		"auth", conf.BasicAuth != nil,
	)

	sources := newEventSources(conf)
	refresher := feed.NewRefresher(sources.fetcher(), conf.FeedTimeout()+5*time.Second)

	sessions, err := newSessions(ctx, conf)
	if err != nil {
		return err
	}

	srv, err := web.NewServer(conf, refresher, sessions)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.StartServer(gctx, conf, srv)
	})
	g.Go(func() error {
		return refresher.Run(gctx, conf.Feed.Refresh)
	})
	g.Go(func() error {
		return config.Watch(gctx, configPath, func(c *config.Config) {
			applyLogging(c)
			if sources.apply(c) {
				snap := refresher.Refresh(gctx)
				appLog.Info("feed sources changed", "event_count", len(snap.Events))
			}
		})
	})

	err = g.Wait()
	appLog.Info("agehasite exiting")
	return err
}

// newSessions builds the chat store, or returns nil when chat is off or
// no API key is available.
func newSessions(ctx context.Context, c *config.Config) (*chat.Sessions, error) {
	if !c.Chat.Enabled {
		return nil, nil
	}
	if c.Chat.APIKey == "" {
		appLog.Info("chat disabled: GEMINI_API_KEY is not set")
		return nil, nil
	}
	gen, err := chat.NewGeminiGenerator(ctx, c.Chat.APIKey, c.Chat.Model)
	if err != nil {
		return nil, err
	}
	appLog.Info("chat enabled", "generator", gen.Name())
	relay := chat.NewRelay(gen, c.Chat.Persona, c.ChatTimeout())
	return chat.NewSessions(relay, c.Chat.Greeting, c.Chat.MaxSessions), nil
}
