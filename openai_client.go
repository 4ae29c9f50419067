package reagent

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyResponse error = errors.New("the LLM returned an empty response")
)

type OpenAIClient struct {
	model  string
	client *openai.Client
}

func NewOpenAILLM(model, apiKey, baseURL string) *OpenAIClient {
	client := openaiClient(apiKey, baseURL)

	return &OpenAIClient{
		model:  model,
		client: client,
	}
}

// Ask prompts to the LLM with the provided messages
// and returns a Fragment containing the response
func (llm *OpenAIClient) Ask(ctx context.Context, f Fragment) (Fragment, error) {
	resp, err := llm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    llm.model,
			Messages: f.Messages,
		},
	)
	if err != nil {
		return Fragment{}, err
	}

	if len(resp.Choices) == 0 {
		return Fragment{}, ErrEmptyResponse
	}

	return Fragment{
		Messages:       append(f.Messages, resp.Choices[0].Message),
		ParentFragment: &f,
	}, nil
}

// CreateChatCompletion forwards the request to the backing client, filling in
// the model the client was built for.
func (llm *OpenAIClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	request.Model = llm.model
	return llm.client.CreateChatCompletion(ctx, request)
}

func openaiClient(apiKey string, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(config)
}
