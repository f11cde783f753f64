// Package websocket is the live transport: it upgrades /ws requests,
// decodes frames into commands and pushes events back as JSON frames.
package websocket

import (
	"chat-signal/auth"
	"chat-signal/contract"
	"chat-signal/domain"
	"chat-signal/errors"
	"context"
	"log/slog"
	"net/http"

	gorilla "github.com/gorilla/websocket"
)

// Coordinator is what the handler drives for each connection.
type Coordinator interface {
	Connect(conn contract.Connection)
	Disconnect(ctx context.Context, connID string)
	Dispatch(ctx context.Context, connID string, cmd domain.Command) error
}

type Handler struct {
	log          *slog.Logger
	coordinator  Coordinator
	auth         *auth.Authenticator
	authRequired bool
	bufferSize   int
	upgrader     gorilla.Upgrader
}

func NewHandler(log *slog.Logger, coordinator Coordinator, authenticator *auth.Authenticator,
	authRequired bool, bufferSize int) *Handler {
	return &Handler{
		log:          log,
		coordinator:  coordinator,
		auth:         authenticator,
		authRequired: authRequired,
		bufferSize:   bufferSize,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil && h.authRequired {
		h.log.Debug("Handshake refused", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Upgrade failed", "error", err)
		return
	}

	client := NewClient(h.log, conn, h.bufferSize)
	h.coordinator.Connect(client)
	go client.writePump()

	// The connection outlives the request context.
	ctx := context.Background()
	if userID != "" {
		h.handle(ctx, client, domain.RegisterOnlineCommand{UserID: userID})
	}

	go func() {
		defer func() {
			client.Close()
			h.coordinator.Disconnect(ctx, client.ID())
		}()
		client.readPump(func(frame []byte) {
			cmd, err := Decode(frame)
			if err != nil {
				h.log.Debug("Frame dropped", "conn", client.ID(), "error", err)
				return
			}
			h.handle(ctx, client, cmd)
		})
	}()
}

// handle runs a command. Errors the user must see were already pushed as
// events by the services; the rest is only logged.
func (h *Handler) handle(ctx context.Context, client *Client, cmd domain.Command) {
	err := h.coordinator.Dispatch(ctx, client.ID(), cmd)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrBlocked), errors.Is(err, errors.ErrStorage):
		h.log.Info("Command failed", "conn", client.ID(), "command", cmd.Name(), "error", err)
	default:
		h.log.Debug("Command rejected", "conn", client.ID(), "command", cmd.Name(), "error", err)
	}
}
