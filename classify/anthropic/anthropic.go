// Package anthropic classifies tasks via the Anthropic Messages API,
// bypassing the local CLI runtime entirely. The repository path is accepted
// for interface compatibility but unused; classification here sees only the
// task text.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/repomesh/repomesh/classify"
	"github.com/repomesh/repomesh/core"
)

// Options configures the Anthropic classifier (temperature, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Classifier wraps the Anthropic Messages API behind the classify.Classifier
// interface.
type Classifier struct {
	client *anthropic.Client
	opts   Options
}

var _ classify.Classifier = (*Classifier)(nil)

// NewClassifier creates a classifier using the official client.
func NewClassifier(optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Temperature: 0,
		MaxTokens:   16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Classifier{
		client: &client,
		opts:   opts,
	}
}

// NewClassifierFromClient creates a classifier from an existing client.
func NewClassifierFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Temperature: 0,
		MaxTokens:   16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Classifier{
		client: client,
		opts:   opts,
	}
}

// tierModel maps a capability tier onto a Messages API model id. Unknown
// tiers get the balanced model.
func tierModel(tier core.ModelTier) anthropic.Model {
	switch tier {
	case core.ModelTierFast:
		return anthropic.ModelClaude3_5Haiku20241022
	case core.ModelTierMostCapable:
		return anthropic.ModelClaude3OpusLatest
	default:
		return anthropic.ModelClaude3_5Sonnet20241022
	}
}

// Classify sends the classification prompt as a single user message and
// filters the reply through the task command whitelist.
func (c *Classifier) Classify(ctx context.Context, _ string, task string, tier core.ModelTier) (core.Command, bool, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       tierModel(tier),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(classify.Prompt(task))),
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	cmd, ok := classify.Match(text.String())
	return cmd, ok, nil
}
