package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/handspeak/handspeak-api/internal/detection"
	"github.com/handspeak/handspeak-api/internal/inference"
)

// Recognizer is the slice of the inference layer the handler needs.
type Recognizer interface {
	Recognize(ctx context.Context, landmarks []float64) (inference.Prediction, error)
}

// Suggester produces word completions.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Feed receives confident detections for the live feed.
type Feed interface {
	Push(ctx context.Context, d detection.DetectedSign) error
}

// Handler upgrades requests to websocket sessions speaking the practice
// protocol. Malformed frames, empty payloads and low-confidence predictions
// get no reply; the client simply sends the next frame.
type Handler struct {
	hub        *Hub
	recognizer Recognizer
	suggester  Suggester
	detections detection.Store // nil disables persistence
	feed       Feed            // nil disables the live feed
	quota      inference.Quota // nil disables quota checks
	log        *slog.Logger
}

// NewHandler wires a websocket handler.
func NewHandler(hub *Hub, recognizer Recognizer, suggester Suggester, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{hub: hub, recognizer: recognizer, suggester: suggester, log: log}
}

// WithDetections enables persisting confident detections.
func (h *Handler) WithDetections(store detection.Store, feed Feed) *Handler {
	h.detections = store
	h.feed = feed
	return h
}

// WithQuota enables per-user quota enforcement.
func (h *Handler) WithQuota(quota inference.Quota) *Handler {
	h.quota = quota
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks are the proxy's job
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	session := Session{
		ID:          uuid.NewString(),
		UserID:      r.URL.Query().Get("user_id"),
		ConnectedAt: time.Now().UTC(),
	}
	h.hub.Register(session)
	defer h.hub.Unregister(session.ID)

	ctx := r.Context()

	ack, err := envelope(EventConnectionAck, map[string]string{"session_id": session.ID})
	if err != nil || wsjson.Write(ctx, conn, ack) != nil {
		return
	}

	for {
		var frame Envelope
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Client went away or sent garbage; either way the session is over.
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		switch frame.Event {
		case EventReqHandsign:
			h.handleHandsign(ctx, conn, session, frame.Data)
		case EventReqAutocomp:
			h.handleAutocomp(ctx, conn, frame.Data)
		default:
			// Unknown events are dropped.
		}
	}
}

func (h *Handler) handleHandsign(ctx context.Context, conn *websocket.Conn, session Session, data json.RawMessage) {
	var req HandsignRequest
	if len(data) == 0 || json.Unmarshal(data, &req) != nil || len(req.Landmarks) == 0 {
		return
	}

	if session.UserID != "" && h.quota != nil {
		ok, err := h.quota.Check(ctx, session.UserID)
		if err != nil {
			h.log.Warn("quota check failed", "user_id", session.UserID, "error", err)
		} else if !ok {
			h.log.Info("quota exhausted", "user_id", session.UserID)
			return
		}
	}

	pred, err := h.recognizer.Recognize(ctx, req.Landmarks)
	if err != nil {
		h.log.Warn("recognition failed", "session_id", session.ID, "error", err)
		return
	}
	if !pred.Confident() {
		return
	}

	if session.UserID != "" {
		if h.quota != nil {
			if err := h.quota.Record(ctx, session.UserID, 1); err != nil {
				h.log.Warn("quota record failed", "user_id", session.UserID, "error", err)
			}
		}
		h.persist(ctx, session.UserID, pred, req.CurrentText)
	}

	resp, err := envelope(EventResHandsign, HandsignResponse{
		Time:        time.Now().UTC(),
		Pred:        pred.Char,
		Prob:        pred.Prob,
		InferMillis: pred.InferMillis,
	})
	if err != nil {
		return
	}
	if err := wsjson.Write(ctx, conn, resp); err != nil {
		h.log.Warn("write failed", "session_id", session.ID, "error", err)
	}
}

func (h *Handler) persist(ctx context.Context, userID string, pred inference.Prediction, currentText string) {
	if h.detections == nil {
		return
	}
	d, err := h.detections.CreateDetection(ctx, detection.DetectedSign{
		UserID:      userID,
		Char:        pred.Char,
		CurrentText: currentText,
	})
	if err != nil {
		h.log.Warn("persist detection failed", "user_id", userID, "error", err)
		return
	}
	if h.feed != nil {
		if err := h.feed.Push(ctx, d); err != nil {
			h.log.Warn("feed push failed", "user_id", userID, "error", err)
		}
	}
}

func (h *Handler) handleAutocomp(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req AutocompRequest
	if len(data) == 0 || json.Unmarshal(data, &req) != nil || req.Text == "" {
		return
	}

	suggestions, err := h.suggester.Suggest(ctx, req.Text)
	if err != nil {
		h.log.Warn("autocomplete failed", "error", err)
		return
	}

	resp, err := envelope(EventResAutocomp, AutocompResponse{Suggestions: suggestions})
	if err != nil {
		return
	}
	if err := wsjson.Write(ctx, conn, resp); err != nil {
		h.log.Warn("write failed", "error", err)
	}
}
