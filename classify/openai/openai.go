// Package openai classifies tasks via the OpenAI Chat Completions API. Like
// its Anthropic counterpart it ignores the repository path; only the task
// text reaches the model.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/repomesh/repomesh/classify"
	"github.com/repomesh/repomesh/core"
)

// Options configure the OpenAI classifier. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Temperature         float64
	MaxCompletionTokens int64
}

// Classifier wraps the OpenAI Chat Completions API behind the
// classify.Classifier interface.
type Classifier struct {
	client *openai.Client
	opts   Options
}

var _ classify.Classifier = (*Classifier)(nil)

// NewClassifier creates a classifier using the official client.
func NewClassifier(optFns ...func(o *Options)) *Classifier {
	client := openai.NewClient()
	return NewClassifierFromClient(&client, optFns...)
}

// NewClassifierFromClient creates a classifier from an existing client.
func NewClassifierFromClient(client *openai.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Temperature:         0,
		MaxCompletionTokens: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// tierModel maps a capability tier onto a chat model id. Unknown tiers get
// the balanced model.
func tierModel(tier core.ModelTier) string {
	switch tier {
	case core.ModelTierFast:
		return openai.ChatModelGPT4oMini
	case core.ModelTierMostCapable:
		return openai.ChatModelO1
	default:
		return openai.ChatModelGPT4o
	}
}

// Classify sends the classification prompt as a single user message and
// filters the reply through the task command whitelist.
func (c *Classifier) Classify(ctx context.Context, _ string, task string, tier core.ModelTier) (core.Command, bool, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: tierModel(tier),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(classify.Prompt(task)),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", false, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", false, fmt.Errorf("no choices returned")
	}

	cmd, ok := classify.Match(resp.Choices[0].Message.Content)
	return cmd, ok, nil
}
