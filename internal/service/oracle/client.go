package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	xlogger "FinChat/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

// Client implements repository.Oracle over an OpenAI-compatible
// chat-completion API. Groq/Gemini-style endpoints work through BaseURL.
type Client struct {
	api         *openai.Client
	logger      *xlogger.Logger
	metrics     drepo.Metrics
	selectModel string
	temperature float32
	maxTokens   int
}

// Config holds oracle client configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	SelectModel string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// New creates an oracle client.
func New(cfg *Config, logger *xlogger.Logger, metrics drepo.Metrics) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		logger:      logger,
		metrics:     metrics,
		selectModel: cfg.SelectModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete runs a plain prompt-completion call and returns the raw text.
func (c *Client) Complete(ctx context.Context, op, model, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	c.record(op, start, err)
	if err != nil {
		return "", &models.OracleError{Op: op, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// SelectTools submits the query with the tool catalog bound as functions and
// maps the model's tool calls back to invocations.
func (c *Client) SelectTools(ctx context.Context, query string, catalog []drepo.ToolSchema) ([]models.ToolInvocation, error) {
	tools := make([]openai.Tool, 0, len(catalog))
	for _, ts := range catalog {
		params := ts.Parameters
		if params == nil {
			params = questionOnlySchema()
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ts.Name,
				Description: ts.Description,
				Parameters:  params,
			},
		})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.selectModel,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Tools: tools,
	})
	c.record("select", start, err)
	if err != nil {
		return nil, &models.OracleError{Op: "select", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	var invocations []models.ToolInvocation
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Type != openai.ToolTypeFunction {
			continue
		}
		args := map[string]interface{}{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				// Malformed arguments are recoverable: the tool still runs on
				// the raw query text.
				c.logger.Warn("unparseable tool arguments",
					xlogger.String("tool", call.Function.Name),
					xlogger.Error(err),
				)
				args = map[string]interface{}{}
			}
		}
		invocations = append(invocations, models.ToolInvocation{
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return invocations, nil
}

func (c *Client) record(op string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordOracleCall(op, time.Since(start).Seconds())
		if err != nil {
			c.metrics.RecordError(fmt.Sprintf("oracle_%s", op))
		}
	}
}

func questionOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The user question",
			},
		},
		"required": []string{"question"},
	}
}
