// Package bot routes inbound messages between the form subsystem, document
// question answering, and a general-knowledge chat fallback.
//
// Routing priority per message: an active form consumes every message until
// it completes; otherwise trigger keywords start a form; otherwise document
// QA gets a chance; otherwise the GenAI fallback replies using the session's
// chat history.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/formflow/FormFlow/internal/form"
	"github.com/formflow/FormFlow/internal/genai"
	"github.com/formflow/FormFlow/internal/models"
	"github.com/openai/openai-go"
)

const (
	// minConfidentAnswerLen is the minimum document answer length treated as
	// a confident answer; shorter answers fall through to general chat.
	minConfidentAnswerLen = 20

	// maxHistoryMessages bounds the chat history sent to the fallback model.
	maxHistoryMessages = 20
)

const fallbackSystemPrompt = `You are a helpful assistant with three capabilities:
1. FORM HANDLING (highest priority): contact collection when the user asks to be called or contacted, and appointment booking when scheduling is mentioned.
2. DOCUMENT ANSWERS: only for specific questions about uploaded files.
3. GENERAL KNOWLEDGE: when neither forms nor documents apply.`

// unavailableMessage is sent when no fallback model is configured.
const unavailableMessage = "I'm not sure how to help with that yet. You can ask about uploaded documents, or say 'contact me' or 'book an appointment'."

// errorMessage is sent when the fallback model fails.
const errorMessage = "Sorry, I encountered an error processing your request."

// QuestionAnswerer answers a question from loaded documents. An empty or
// short answer means no confident answer was found.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// chatMessage is one turn of per-session chat history.
type chatMessage struct {
	role    string // "user" or "assistant"
	content string
}

// Bot is the conversational front-end. One Bot serves many sessions; all
// per-session state lives in the form handler's sessions and the history map.
type Bot struct {
	forms *form.Handler
	docqa QuestionAnswerer
	genai genai.ClientInterface

	mu        sync.Mutex
	histories map[string][]chatMessage
}

// NewBot creates a Bot. docqa and genaiClient may be nil, disabling document
// answers and the model-backed fallback respectively.
func NewBot(forms *form.Handler, docqa QuestionAnswerer, genaiClient genai.ClientInterface) *Bot {
	return &Bot{
		forms:     forms,
		docqa:     docqa,
		genai:     genaiClient,
		histories: make(map[string][]chatMessage),
	}
}

// HandleMessage processes one inbound message for a session and returns the
// reply text.
func (b *Bot) HandleMessage(ctx context.Context, sessionID, body string) (string, error) {
	slog.Debug("Bot handling message", "sessionID", sessionID, "body_length", len(body))

	// An active form consumes every message until completion.
	if b.forms.Active(sessionID) {
		return b.handleFormTurn(ctx, sessionID, body)
	}

	if ft, ok := DetectFormTrigger(body); ok {
		slog.Info("Bot detected form trigger", "sessionID", sessionID, "formType", ft)
		return b.forms.StartForm(ctx, sessionID, ft)
	}

	if b.docqa != nil {
		answer, err := b.docqa.AnswerQuestion(ctx, body)
		if err != nil {
			slog.Error("Bot document QA failed", "error", err, "sessionID", sessionID)
		} else if len(strings.TrimSpace(answer)) > minConfidentAnswerLen {
			b.appendHistory(sessionID, body, answer)
			slog.Info("Bot answered from documents", "sessionID", sessionID)
			return answer, nil
		}
	}

	return b.handleFallback(ctx, sessionID, body)
}

// ResetSession discards all conversational state for a session, including
// any in-progress form. This is the only way to abandon a form externally.
func (b *Bot) ResetSession(sessionID string) {
	b.forms.Reset(sessionID)
	b.mu.Lock()
	delete(b.histories, sessionID)
	b.mu.Unlock()
	slog.Info("Bot reset session", "sessionID", sessionID)
}

func (b *Bot) handleFormTurn(ctx context.Context, sessionID, body string) (string, error) {
	resp, err := b.forms.ProcessInput(ctx, sessionID, body)
	if err != nil {
		return "", fmt.Errorf("form turn failed: %w", err)
	}

	switch resp.Status {
	case models.FormStatusComplete:
		b.appendHistory(sessionID, body, resp.Message)
		return resp.Message, nil
	case models.FormStatusFailed:
		return resp.Message, nil
	default:
		// in_progress and error both carry the next prompt
		return resp.Prompt, nil
	}
}

func (b *Bot) handleFallback(ctx context.Context, sessionID, body string) (string, error) {
	if b.genai == nil {
		return unavailableMessage, nil
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(fallbackSystemPrompt),
	}
	for _, msg := range b.history(sessionID) {
		if msg.role == "user" {
			messages = append(messages, openai.UserMessage(msg.content))
		} else {
			messages = append(messages, openai.AssistantMessage(msg.content))
		}
	}
	messages = append(messages, openai.UserMessage(body))

	reply, err := b.genai.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Error("Bot fallback generation failed", "error", err, "sessionID", sessionID)
		return errorMessage, nil
	}

	b.appendHistory(sessionID, body, reply)
	slog.Debug("Bot answered from fallback model", "sessionID", sessionID)
	return reply, nil
}

// history returns a copy of the session's bounded chat history.
func (b *Bot) history(sessionID string) []chatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	history := b.histories[sessionID]
	out := make([]chatMessage, len(history))
	copy(out, history)
	return out
}

// appendHistory records one user/assistant exchange, trimming old turns.
func (b *Bot) appendHistory(sessionID, userText, assistantText string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	history := append(b.histories[sessionID],
		chatMessage{role: "user", content: userText},
		chatMessage{role: "assistant", content: assistantText},
	)
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	b.histories[sessionID] = history
}
