// Package chat relays guest questions to a text-generation service using
// a fixed concierge persona.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	appLog "agehasite/internal/log"
)

const (
	// ApologyBusy replaces the reply when the generation service fails.
	ApologyBusy = "申し訳ございません。ただいまアクセスが集中しております。"
	// ApologyEmpty replaces an empty reply.
	ApologyEmpty = "申し訳ございません。現在応答できません。"
)

// ErrEmptyQuestion is returned for blank input.
var ErrEmptyQuestion = errors.New("chat: question is empty")

// Generator produces a reply for question under the given system prompt.
type Generator interface {
	Generate(ctx context.Context, system, question string) (string, error)
}

// Relay forwards questions to a Generator. It never retries and never
// surfaces generator errors; callers always get displayable text.
type Relay struct {
	gen     Generator
	persona string
	timeout time.Duration
}

// NewRelay creates a relay. timeout bounds each call (0 = caller's ctx only).
func NewRelay(gen Generator, persona string, timeout time.Duration) *Relay {
	return &Relay{gen: gen, persona: persona, timeout: timeout}
}

// Ask returns the generated reply verbatim, or a fixed apology if the
// service fails or returns nothing.
func (r *Relay) Ask(ctx context.Context, question string) string {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	reply, err := r.generate(ctx, question)
	if err != nil {
		appLog.Error("chat generation failed", err, "question_len", len(question))
		return ApologyBusy
	}
	if strings.TrimSpace(reply) == "" {
		return ApologyEmpty
	}
	return reply
}

// generate calls the generator, turning a panic into an error so one bad
// response can't take the server down.
func (r *Relay) generate(ctx context.Context, question string) (reply string, err error) {
	if r.gen == nil {
		return "", errors.New("chat: no generator configured")
	}
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("chat: generator panicked")
		}
	}()
	return r.gen.Generate(ctx, r.persona, question)
}
