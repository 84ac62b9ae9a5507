// Package anthropic is a single-prompt completion client over the Anthropic
// SDK. Conversation state, tools and streaming are not exposed.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client completes one prompt per call.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Request is a one-turn prompt. System is optional.
type Request struct {
	Model     string
	MaxTokens int64
	System    string
	Prompt    string
}

// Completion is the model's answer with its text blocks already joined.
type Completion struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      Usage
}

// Truncated reports whether the answer stopped at the token limit.
func (c *Completion) Truncated() bool {
	return c.StopReason == string(sdk.StopReasonMaxTokens)
}

// Usage counts the tokens billed for one completion.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// USD per million tokens, input then output.
var pricePerMTok = map[string]struct{ in, out float64 }{
	"claude-haiku-4-5-20251001":  {in: 0.80, out: 4.00},
	"claude-sonnet-4-5-20250929": {in: 3.00, out: 15.00},
}

// Cost is the estimated USD spend for model; unknown models cost 0.
func (u Usage) Cost(model string) float64 {
	p, ok := pricePerMTok[model]
	if !ok {
		return 0
	}
	return (p.in*float64(u.InputTokens) + p.out*float64(u.OutputTokens)) / 1e6
}

// Log records the usage at debug level under the given caller label.
func (u Usage) Log(model, caller string) {
	zap.L().Debug("anthropic: usage",
		zap.String("caller", caller),
		zap.String("model", model),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("cost_usd", u.Cost(model)),
	)
}

type sdkClient struct {
	messages sdk.MessageService
}

// NewClient returns an SDK-backed Client. SDK retries are off so the caller's
// retry policy is the only one.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	c := sdk.NewClient(append(base, opts...)...)
	return &sdkClient{messages: c.Messages}
}

func (c *sdkClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrapf(err, "anthropic: complete (model %s)", req.Model)
	}
	return completion(msg), nil
}

func completion(msg *sdk.Message) *Completion {
	var text []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			text = append(text, block.Text)
		}
	}
	return &Completion{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Text:       strings.Join(text, "\n"),
		StopReason: string(msg.StopReason),
		Usage:      Usage{InputTokens: msg.Usage.InputTokens, OutputTokens: msg.Usage.OutputTokens},
	}
}
