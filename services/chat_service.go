package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/agent"
	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
)

const welcomeText = "Bonjour ! Je suis votre conseiller voyage. Dites-moi où vous rêvez de partir, pour combien de temps et dans quel style, et je vous proposerai des voyages sur mesure."

// ChatService exposes the recommendation pipeline over HTTP. One instance
// serves all sessions.
type ChatService struct {
	flow     *agent.Flow
	store    *memory.Store
	switches *llm.SwitchStore
}

func NewChatService(flow *agent.Flow, store *memory.Store, switches *llm.SwitchStore) *ChatService {
	return &ChatService{flow: flow, store: store, switches: switches}
}

func (s *ChatService) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", s.Chat)
	e.POST("/api/chat/stream", s.ChatStream)
	e.GET("/api/preferences/:session", s.GetPreferences)
	e.POST("/api/memory/clear", s.ClearMemory)
	e.GET("/api/models/switches", s.GetSwitches)
	e.PUT("/api/models/switches/:role", s.SetSwitch)
	e.GET("/api/welcome", s.Welcome)
	e.GET("/health", s.Health)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string             `json:"session_id"`
	Kind      agent.ResponseKind `json:"kind"`
	Text      string             `json:"text"`
	Offers    []catalog.Match    `json:"offers,omitempty"`
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Chat runs the pipeline synchronously and returns the full reply.
// POST /api/chat
func (s *ChatService) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: "invalid request body",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	resp, err := s.flow.Execute(c.Request().Context(), agent.NoOpReporter{}, req.SessionID, req.Message)
	if err != nil {
		kind := llm.KindOf(err)
		logger.Error("chat request failed",
			zap.String("session", req.SessionID), zap.String("kind", string(kind)), zap.Error(err))
		return c.JSON(statusForKind(kind), errorResponse{
			Kind:    string(kind),
			Message: "le service est momentanément indisponible",
		})
	}

	return c.JSON(http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Kind:      resp.Kind,
		Text:      resp.Text,
		Offers:    resp.Offers,
	})
}

// ChatStream runs the pipeline and streams the reply as server-sent events.
// Event payloads are JSON objects with a "type" of content, offers, end or
// error.
// POST /api/chat/stream
func (s *ChatService) ChatStream(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: "invalid request body",
		})
	}
	// Reject unprocessable input before committing to an event stream;
	// after the headers are written only stream events can reach the client.
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: "message is empty",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Session-Id", req.SessionID)
	c.Response().WriteHeader(http.StatusOK)

	reporter := &sseReporter{response: c.Response()}
	if _, err := s.flow.Execute(c.Request().Context(), reporter, req.SessionID, req.Message); err != nil {
		// Terminal events were already written by the flow; nothing else
		// can be sent on an open event stream.
		logger.Error("stream request failed",
			zap.String("session", req.SessionID), zap.Error(err))
	}
	return nil
}

// GetPreferences returns the accumulated preference profile of a session.
// GET /api/preferences/:session
func (s *ChatService) GetPreferences(c echo.Context) error {
	sessionID := c.Param("session")
	prefs := s.store.Preferences(sessionID)
	return c.JSON(http.StatusOK, map[string]any{
		"session_id":  sessionID,
		"preferences": prefs,
		"sufficient":  prefs.Sufficient(),
	})
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

// ClearMemory discards one session, or every session when no id is given.
// POST /api/memory/clear
func (s *ChatService) ClearMemory(c echo.Context) error {
	var req clearRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: "invalid request body",
		})
	}
	if req.SessionID == "" {
		s.store.ClearAll()
	} else {
		s.store.Clear(req.SessionID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

// GetSwitches reports which model roles are currently enabled.
// GET /api/models/switches
func (s *ChatService) GetSwitches(c echo.Context) error {
	return c.JSON(http.StatusOK, s.switches.Snapshot())
}

type switchRequest struct {
	Enabled bool `json:"enabled"`
}

// SetSwitch enables or disables one model role at runtime.
// PUT /api/models/switches/:role
func (s *ChatService) SetSwitch(c echo.Context) error {
	role := llm.Role(c.Param("role"))
	var known bool
	for _, r := range llm.Roles() {
		if r == role {
			known = true
			break
		}
	}
	if !known {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: fmt.Sprintf("unknown model role %q", role),
		})
	}

	var req switchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    string(llm.KindValidationError),
			Message: "invalid request body",
		})
	}

	s.switches.Set(role, req.Enabled)
	logger.Info("model switch changed",
		zap.String("role", string(role)), zap.Bool("enabled", req.Enabled))
	return c.JSON(http.StatusOK, s.switches.Snapshot())
}

// GET /api/welcome
func (s *ChatService) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": welcomeText})
}

// GET /health
func (s *ChatService) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func statusForKind(kind llm.ErrorKind) int {
	switch kind {
	case llm.KindValidationError:
		return http.StatusBadRequest
	case llm.KindQuotaExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// sseReporter forwards pipeline events to a connected event-stream client.
// Each event is one "data:" line holding a JSON object.
type sseReporter struct {
	response *echo.Response
}

type sseEvent struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Offers  []catalog.Match `json:"offers,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (r *sseReporter) send(event sseEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.response, "data: %s\n\n", payload); err != nil {
		return err
	}
	r.response.Flush()
	return nil
}

func (r *sseReporter) Content(chunk string) error {
	return r.send(sseEvent{Type: "content", Content: chunk})
}

func (r *sseReporter) Offers(matches []catalog.Match) error {
	return r.send(sseEvent{Type: "offers", Offers: matches})
}

func (r *sseReporter) End(kind agent.ResponseKind) error {
	return r.send(sseEvent{Type: "end", Kind: string(kind)})
}

func (r *sseReporter) Error(kind, message string) error {
	return r.send(sseEvent{Type: "error", Kind: kind, Message: message})
}
