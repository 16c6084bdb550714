// Package chat keeps per-document conversations with the model. History
// lives in a session cache keyed by document id; switching documents
// resets the active conversation without losing the others.
package chat

import (
	"context"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Completer is the slice of the OpenAI client the store needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Store holds conversations and answers questions about documents.
type Store struct {
	client Completer
	model  string
	cache  *gocache.Cache
	log    *zap.Logger

	// mu guards active and the history read-modify-write: Ask runs on
	// a background goroutine while resets run on the UI event loop.
	mu     sync.Mutex
	active string
}

// NewStore creates a Store. A nil logger disables logging.
func NewStore(client Completer, model string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client: client,
		model:  model,
		cache:  gocache.New(gocache.NoExpiration, 0),
		log:    log,
	}
}

// History returns the conversation recorded for the document.
func (s *Store) History(docID string) []Message {
	if v, ok := s.cache.Get(docID); ok {
		return v.([]Message)
	}
	return nil
}

// Ask sends a question about the document, grounding the model with an
// excerpt of its text, and appends both turns to the history.
func (s *Store) Ask(ctx context.Context, docID, question, excerpt string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("chat is not configured")
	}

	history := s.History(docID)
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: "You answer questions about the following document excerpt.\n\n" + excerpt,
	}}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := resp.Choices[0].Message.Content

	// Re-read under the lock so an interleaved Ask cannot drop turns.
	s.mu.Lock()
	history = append(s.History(docID),
		Message{Role: openai.ChatMessageRoleUser, Content: question},
		Message{Role: openai.ChatMessageRoleAssistant, Content: answer},
	)
	s.cache.Set(docID, history, gocache.NoExpiration)
	s.active = docID
	s.mu.Unlock()
	return answer, nil
}

// ResetForNewDocument clears the active-conversation pointer when the
// viewer switches documents. Histories of other documents survive.
func (s *Store) ResetForNewDocument() {
	s.mu.Lock()
	s.active = ""
	s.mu.Unlock()
}

// RemoveDocument purges a removed document's history.
func (s *Store) RemoveDocument(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(docID)
	if s.active == docID {
		s.active = ""
	}
}
