// Package docqa provides retrieval-augmented question answering over
// uploaded text documents.
//
// Documents are chunked, embedded once at load time, and held in an
// in-memory index. Questions are answered by embedding the question,
// selecting the most similar chunks by cosine similarity, and asking the
// chat model to answer strictly from those chunks.
package docqa

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/formflow/FormFlow/internal/genai"
	"github.com/openai/openai-go"
)

const (
	// maxChunkChars bounds the size of one indexed chunk.
	maxChunkChars = 1500
	// topChunks is how many chunks are retrieved per question.
	topChunks = 4
)

const answerSystemPrompt = "You answer questions using only the provided document excerpts. " +
	"If the excerpts do not contain the answer, reply with exactly: I don't know."

// chunk is one indexed piece of a document.
type chunk struct {
	source    string
	text      string
	embedding []float64
}

// DocumentQA indexes text documents and answers questions grounded in them.
type DocumentQA struct {
	genai genai.ClientInterface

	mu     sync.RWMutex
	chunks []chunk
}

// NewDocumentQA creates a DocumentQA backed by the given GenAI client.
func NewDocumentQA(client genai.ClientInterface) *DocumentQA {
	return &DocumentQA{genai: client}
}

// LoadDocuments reads every .txt and .md file under folderPath, chunks and
// embeds them, and replaces the current index. Returns the number of chunks
// indexed.
func (d *DocumentQA) LoadDocuments(ctx context.Context, folderPath string) (int, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		slog.Error("DocumentQA failed to read document folder", "error", err, "folder", folderPath)
		return 0, fmt.Errorf("failed to read document folder %s: %w", folderPath, err)
	}

	var chunks []chunk
	var texts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		path := filepath.Join(folderPath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("DocumentQA failed to read document", "error", err, "path", path)
			return 0, fmt.Errorf("failed to read document %s: %w", path, err)
		}
		for _, text := range chunkText(string(data)) {
			chunks = append(chunks, chunk{source: entry.Name(), text: text})
			texts = append(texts, text)
		}
	}

	if len(chunks) == 0 {
		slog.Warn("DocumentQA found no documents to index", "folder", folderPath)
		d.mu.Lock()
		d.chunks = nil
		d.mu.Unlock()
		return 0, nil
	}

	vectors, err := d.genai.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed documents: %w", err)
	}
	for i := range chunks {
		chunks[i].embedding = vectors[i]
	}

	d.mu.Lock()
	d.chunks = chunks
	d.mu.Unlock()

	slog.Info("DocumentQA indexed documents", "folder", folderPath, "chunks", len(chunks))
	return len(chunks), nil
}

// HasDocuments reports whether any documents are indexed.
func (d *DocumentQA) HasDocuments() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.chunks) > 0
}

// AnswerQuestion answers a question from the indexed documents. An empty or
// very short answer means no confident answer was found; callers should fall
// through to other behaviors.
func (d *DocumentQA) AnswerQuestion(ctx context.Context, question string) (string, error) {
	d.mu.RLock()
	indexed := make([]chunk, len(d.chunks))
	copy(indexed, d.chunks)
	d.mu.RUnlock()

	if len(indexed) == 0 {
		slog.Debug("DocumentQA has no indexed documents")
		return "", nil
	}

	vectors, err := d.genai.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}
	queryVec := vectors[0]

	sort.SliceStable(indexed, func(i, j int) bool {
		return cosine(indexed[i].embedding, queryVec) > cosine(indexed[j].embedding, queryVec)
	})
	if len(indexed) > topChunks {
		indexed = indexed[:topChunks]
	}

	var b strings.Builder
	for _, c := range indexed {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", c.source, c.text)
	}

	answer, err := d.genai.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(answerSystemPrompt),
		openai.UserMessage(fmt.Sprintf("Document excerpts:\n\n%sQuestion: %s", b.String(), question)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	// Models often append a period to the sentinel despite the prompt.
	if strings.EqualFold(strings.TrimRight(answer, "."), "I don't know") {
		return "", nil
	}
	slog.Debug("DocumentQA answered question", "chunks_used", len(indexed), "answer_length", len(answer))
	return answer, nil
}

// chunkText splits a document into paragraph-aligned chunks of at most
// maxChunkChars characters.
func chunkText(text string) []string {
	var chunks []string
	var current strings.Builder

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		// Oversized paragraphs are split hard.
		for len(para) > maxChunkChars {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, para[:maxChunkChars])
			para = para[maxChunkChars:]
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > maxChunkChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// cosine returns the cosine similarity of two vectors.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
