package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleValuationWS handles GET /api/ws/portfolios/{id}/valuation — a
// websocket stream of full valuation snapshots, pushed on every holding
// change and catalog refresh. Browsers cannot set an Authorization header on
// websocket dials, so a ?token= query parameter is accepted as well.
func (s *Server) handleValuationWS(w http.ResponseWriter, r *http.Request) {
	portfolioID := PathParam(r, "/api/ws/portfolios/", "/valuation")
	if portfolioID == "" || !strings.HasSuffix(r.URL.Path, "/valuation") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	userID := s.resolveWSUser(w, r)
	if userID == "" {
		return
	}

	sub, err := s.app.PortfolioService.SubscribeValuation(r.Context(), userID, portfolioID)
	if err != nil {
		if err == interfaces.ErrNotFound {
			WriteError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("Failed to open valuation stream")
		WriteError(w, http.StatusInternalServerError, "failed to open stream")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.logger.Debug().Str("portfolio", portfolioID).Str("user", userID).Msg("Valuation stream opened")
	go s.valuationWritePump(conn, sub)
	go valuationReadPump(conn, sub)
}

// resolveWSUser authenticates the websocket request. Returns "" after writing
// an error response when authentication fails.
func (s *Server) resolveWSUser(w http.ResponseWriter, r *http.Request) string {
	if uc := common.UserContextFromContext(r.Context()); uc != nil && uc.UserID != "" {
		return uc.UserID
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return ""
	}

	claims, err := validateJWT(token, []byte(s.app.Config.Auth.JWTSecret))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid or expired token")
		return ""
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		WriteError(w, http.StatusUnauthorized, "invalid token claims")
		return ""
	}
	return sub
}

// valuationWritePump sends valuation snapshots and pings until the stream or
// the connection closes.
func (s *Server) valuationWritePump(conn *websocket.Conn, sub interfaces.Subscription[*models.PortfolioValuation]) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-sub.Updates():
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Failed to marshal valuation snapshot")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// valuationReadPump reads messages from the connection (mainly to detect close).
func valuationReadPump(conn *websocket.Conn, sub interfaces.Subscription[*models.PortfolioValuation]) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
