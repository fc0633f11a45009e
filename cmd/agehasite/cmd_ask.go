package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"agehasite/internal/chat"
)

var askRaw bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the concierge one question",
	Long: `Sends one question to the chat relay with the configured persona
and prints the reply. Requires GEMINI_API_KEY (or API_KEY).

Example:
  agehasite ask "日曜日は営業していますか?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the reply without markdown rendering")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if conf.Chat.APIKey == "" {
		return errors.New("GEMINI_API_KEY is not set")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gen, err := chat.NewGeminiGenerator(ctx, conf.Chat.APIKey, conf.Chat.Model)
	if err != nil {
		return err
	}
	relay := chat.NewRelay(gen, conf.Chat.Persona, conf.ChatTimeout())
	reply := relay.Ask(ctx, strings.Join(args, " "))

	out := cmd.OutOrStdout()
	if askRaw {
		_, err := fmt.Fprintln(out, reply)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		_, err = fmt.Fprintln(out, reply)
		return err
	}
	rendered, err := renderer.Render(reply)
	if err != nil {
		rendered = reply + "\n"
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
