package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	lastReq openai.ChatCompletionRequest
	answer  string
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.answer}},
		},
	}, nil
}

func TestAskRecordsHistory(t *testing.T) {
	stub := &stubCompleter{answer: "it introduces self-attention"}
	store := NewStore(stub, "gpt-4o-mini", nil)

	answer, err := store.Ask(context.Background(), "doc1", "what is the key idea?", "excerpt")
	require.NoError(t, err)
	assert.Equal(t, "it introduces self-attention", answer)

	history := store.History("doc1")
	require.Len(t, history, 2)
	assert.Equal(t, "what is the key idea?", history[0].Content)
	assert.Equal(t, "it introduces self-attention", history[1].Content)
}

func TestAskThreadsPriorTurns(t *testing.T) {
	stub := &stubCompleter{answer: "a"}
	store := NewStore(stub, "gpt-4o-mini", nil)

	_, err := store.Ask(context.Background(), "doc1", "first", "excerpt")
	require.NoError(t, err)
	_, err = store.Ask(context.Background(), "doc1", "second", "excerpt")
	require.NoError(t, err)

	// system + first Q + first A + second Q
	assert.Len(t, stub.lastReq.Messages, 4)
}

func TestHistoriesAreIsolatedPerDocument(t *testing.T) {
	stub := &stubCompleter{answer: "a"}
	store := NewStore(stub, "gpt-4o-mini", nil)

	_, err := store.Ask(context.Background(), "doc1", "q", "e")
	require.NoError(t, err)

	assert.Nil(t, store.History("doc2"))
}

func TestResetForNewDocumentKeepsHistories(t *testing.T) {
	stub := &stubCompleter{answer: "a"}
	store := NewStore(stub, "gpt-4o-mini", nil)

	_, err := store.Ask(context.Background(), "doc1", "q", "e")
	require.NoError(t, err)

	store.ResetForNewDocument()
	assert.Len(t, store.History("doc1"), 2)
}

func TestRemoveDocumentPurgesHistory(t *testing.T) {
	stub := &stubCompleter{answer: "a"}
	store := NewStore(stub, "gpt-4o-mini", nil)

	_, err := store.Ask(context.Background(), "doc1", "q", "e")
	require.NoError(t, err)

	store.RemoveDocument("doc1")
	assert.Nil(t, store.History("doc1"))
}

func TestAskWithoutClient(t *testing.T) {
	store := NewStore(nil, "", nil)
	_, err := store.Ask(context.Background(), "doc1", "q", "e")
	assert.Error(t, err)
}

// fixedCompleter keeps no state of its own so it is safe to call from
// many goroutines at once.
type fixedCompleter struct {
	answer string
}

func (c fixedCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.answer}},
		},
	}, nil
}

func TestAskConcurrentWithReset(t *testing.T) {
	store := NewStore(fixedCompleter{answer: "ok"}, "gpt-4o-mini", nil)

	// Ask runs on a background goroutine while document switches reset
	// the store from the UI loop.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		docID := fmt.Sprintf("doc%d", i%4)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.Ask(context.Background(), docID, "q", "excerpt"); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			store.ResetForNewDocument()
			store.RemoveDocument(docID)
		}()
	}
	wg.Wait()
}
