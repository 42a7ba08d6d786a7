package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/forecast"
)

const (
	actionForecast = "forecast"

	wsMaxMessage = 4096
	wsIdle       = 5 * time.Minute
	wsWriteWait  = 10 * time.Second
)

type wsRequest struct {
	Action string `json:"action"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type wsResponse struct {
	Type     string           `json:"type"`
	Forecast *forecast.Result `json:"forecast,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// handleWebsocket answers forecast actions one at a time, in order.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	log := s.logger.With(zap.String("remote", r.RemoteAddr))
	log.Debug("Websocket connected")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdle))

		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Websocket read failed", zap.Error(err))
			}
			return
		}

		resp := s.handleAction(req)

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.Warn("Websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleAction(req wsRequest) wsResponse {
	if req.Action != actionForecast {
		return wsResponse{Type: "error", Error: fmt.Sprintf("unknown action %q", req.Action)}
	}

	defStart, defEnd := s.defaultRange()
	start, end, err := parseRange(req.Start, req.End, defStart, defEnd)
	if err != nil {
		return wsResponse{Type: "error", Error: err.Error()}
	}

	result, err := s.runForecast("ws", start, end)
	switch {
	case errors.Is(err, forecast.ErrInvalidRange):
		return wsResponse{Type: "error", Error: forecast.InvalidRangeMessage}
	case errors.Is(err, forecast.ErrHorizonTooLarge):
		return wsResponse{Type: "error", Error: err.Error()}
	case err != nil:
		s.logger.Error("Forecast failed", zap.Error(err))
		return wsResponse{Type: "error", Error: "forecast failed"}
	}
	return wsResponse{Type: actionForecast, Forecast: result}
}
