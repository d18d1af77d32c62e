package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dom/qa-assessment/internal/api/middleware"
	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/service"
	"github.com/dom/qa-assessment/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the session token
	},
}

type FeedHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	log         *zap.Logger
}

func NewFeedHandler(hub *websocket.Hub, authService *service.AuthService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{
		hub:         hub,
		authService: authService,
		log:         log.Named("handlers.feed"),
	}
}

// Handle upgrades an authenticated request to a post feed subscription.
// Browsers cannot set headers on a WebSocket handshake, so the token may
// also be passed as ?token=.
func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromHeader(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ac, err := h.authService.Authenticate(r.Context(), token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			h.log.Error("feed authentication failed", zap.Error(err))
		}
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Registering under Guard orders it before any concurrent logout, whose
	// revocation then finds the client.
	var client *websocket.Client
	handshakeStarted := false
	err = h.authService.Guard(r.Context(), ac, func(context.Context) error {
		handshakeStarted = true
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return err
		}
		c := websocket.NewClient(h.hub, conn, ac.UserID, service.SessionKey(ac.Token))
		if !h.hub.Register(c) {
			conn.Close()
			return nil
		}
		client = c
		return nil
	})
	switch {
	case err != nil && !handshakeStarted:
		if !errors.Is(err, domain.ErrUnauthenticated) {
			h.log.Error("feed session guard failed", zap.Error(err))
		}
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	case err != nil:
		h.log.Warn("websocket upgrade failed", zap.Error(err))
	}
	if client == nil {
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
