package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/formflow/FormFlow/internal/models"
	"github.com/google/uuid"
)

// MessageRequest is the body of POST /messages.
type MessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Body      string `json:"body"`
}

// MessageReply is the result payload of POST /messages.
type MessageReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// DocumentsRequest is the body of POST /documents.
type DocumentsRequest struct {
	Path string `json:"path"`
}

// messagesHandler runs one conversational turn. A missing session_id mints a
// new session so the caller can continue the conversation.
func (s *Server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("messagesHandler bad request body", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON body"))
		return
	}
	if req.Body == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("body is required"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
		slog.Debug("messagesHandler minted session", "sessionID", req.SessionID)
	}

	reply, err := s.bot.HandleMessage(r.Context(), req.SessionID, req.Body)
	if err != nil {
		slog.Error("messagesHandler failed to handle message", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to process message"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(MessageReply{SessionID: req.SessionID, Reply: reply}))
}

// recordsHandler lists persisted contact records, optionally filtered by
// appointment date (?date=YYYY-MM-DD).
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}

	var (
		records []models.ContactRecord
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		records, err = s.store.RecordsByDate(date)
	} else {
		records, err = s.store.LoadAllRecords()
	}
	if err != nil {
		slog.Error("recordsHandler failed to load records", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load records"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(records))
}

// documentsHandler indexes a folder of documents for question answering.
func (s *Server) documentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	if s.docqa == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("document QA is not configured"))
		return
	}

	var req DocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("path is required"))
		return
	}

	count, err := s.docqa.LoadDocuments(r.Context(), req.Path)
	if err != nil {
		slog.Error("documentsHandler failed to index documents", "error", err, "path", req.Path)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to index documents"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(fmt.Sprintf("indexed %d chunks", count), nil))
}

// twilioWebhookHandler handles inbound Twilio messages. The sender's phone
// number in E.164 form is the session key, so a person texting the service
// keeps one continuous conversation.
func (s *Server) twilioWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	if s.msg == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("messaging is not configured"))
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse Twilio webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	inbound := models.Response{
		From: r.FormValue("From"),
		Body: r.FormValue("Body"),
		Time: time.Now().Unix(),
	}
	if inbound.From == "" || inbound.Body == "" {
		slog.Warn("Twilio webhook missing fields", "from_set", inbound.From != "", "body_set", inbound.Body != "")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	canonicalFrom, err := s.msg.ValidateAndCanonicalizeRecipient(inbound.From)
	if err != nil {
		slog.Error("Twilio webhook sender validation failed", "error", err, "from", inbound.From)
		http.Error(w, "Invalid sender", http.StatusBadRequest)
		return
	}

	slog.Info("Inbound message from Twilio", "from", canonicalFrom, "body_length", len(inbound.Body), "time", inbound.Time)

	reply, err := s.bot.HandleMessage(r.Context(), canonicalFrom, inbound.Body)
	if err != nil {
		slog.Error("Twilio webhook failed to handle message", "error", err, "from", canonicalFrom)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if err := s.msg.SendMessage(r.Context(), canonicalFrom, reply); err != nil {
		slog.Error("Twilio webhook failed to send reply", "error", err, "to", canonicalFrom)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// healthHandler reports service liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success("ok"))
}
