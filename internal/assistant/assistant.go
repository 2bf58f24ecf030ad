// Package assistant answers questions about the site owner from their resume,
// through an OpenAI-compatible chat endpoint.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/store"
)

// ChatCompleter is the part of *openai.Client the assistant uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Assistant struct {
	client      ChatCompleter
	model       string
	temperature float32
	spec        PromptSpec
	index       *Index
	k           int
}

func NewAssistant(client ChatCompleter, model string, temperature float32, spec PromptSpec, index *Index, k int) *Assistant {
	if k <= 0 {
		k = 4
	}
	if spec.Style.Temperature > 0 {
		temperature = spec.Style.Temperature
	}
	return &Assistant{client: client, model: model, temperature: temperature, spec: spec, index: index, k: k}
}

// New loads the prompt and resume named by cfg, embeds the resume and returns
// a ready assistant.
func New(ctx context.Context, cfg config.Config) (*Assistant, error) {
	spec, err := LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt spec: %w", err)
	}
	resume, err := os.ReadFile(cfg.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("resume not found at %q: %w", cfg.ResumePath, err)
	}
	chunks := SplitText(string(resume), cfg.ChunkSize, cfg.ChunkOverlap)
	slog.Info("[assistant] parsed resume", "path", cfg.ResumePath, "chunks", len(chunks))

	chatCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	chatCfg.BaseURL = cfg.OpenAIBaseURL
	chat := openai.NewClientWithConfig(chatCfg)

	var embedder Embedder
	if cfg.EmbeddingModel != "" {
		embCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		embCfg.BaseURL = cfg.EmbeddingBaseURL
		embedder = NewOpenAIEmbedder(openai.NewClientWithConfig(embCfg), cfg.EmbeddingModel)
	}

	ictx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	index := BuildIndex(ictx, chunks, embedder)

	return NewAssistant(chat, cfg.Model, cfg.Temperature, spec, index, cfg.RetrievalK), nil
}

// Answer retrieves the chunks relevant to question and asks the model for a
// reply grounded in them. history holds prior turns of the same session,
// oldest first, without the current question.
func (a *Assistant) Answer(ctx context.Context, question string, history []store.Message) (string, error) {
	docs := a.index.Search(ctx, question, a.k)
	parts := make([]string, 0, len(docs))
	for i, d := range docs {
		parts = append(parts, fmt.Sprintf("[Chunk %d]\n%s", i+1, d))
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: a.spec.System})
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: a.spec.render(strings.Join(parts, "\n\n"), question),
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.spec.Style.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
