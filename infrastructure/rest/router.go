// Package rest serves the HTTP API next to the websocket endpoint: history,
// message mutations, contacts, blocks, uploads and runtime stats.
package rest

import (
	"chat-signal/auth"
	"chat-signal/domain"
	"chat-signal/services"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Uploader is the attachment store behind the upload endpoints.
type Uploader interface {
	Store(originalName string, r io.Reader, asAudio bool, duration *float64) (domain.FileDescriptor, error)
	Path(folder, filename string) (string, error)
	Root() string
}

// StatsProvider reports runtime counters for /api/stats.
type StatsProvider func() map[string]any

type API struct {
	log          *slog.Logger
	messages     services.IMessageService
	contacts     services.IContactService
	uploads      Uploader
	auth         *auth.Authenticator
	authRequired bool
	stats        StatsProvider
	maxFileSize  int64
}

func NewAPI(log *slog.Logger, messages services.IMessageService, contacts services.IContactService,
	uploads Uploader, authenticator *auth.Authenticator, authRequired bool, maxFileSize int64, stats StatsProvider) *API {
	return &API{
		log:          log,
		messages:     messages,
		contacts:     contacts,
		uploads:      uploads,
		auth:         authenticator,
		authRequired: authRequired,
		stats:        stats,
		maxFileSize:  maxFileSize,
	}
}

// Router mounts every route. ws is served at /ws when not nil.
func (a *API) Router(ws http.Handler) *mux.Router {
	r := mux.NewRouter()
	if ws != nil {
		r.Handle("/ws", ws)
	}
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.uploads.Root())))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(a.authenticate)

	api.HandleFunc("/messages", a.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/messages/search", a.searchMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/clear", a.clearHistory).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/edit", a.editMessage).Methods(http.MethodPut)
	api.HandleFunc("/messages/{id}/delete", a.deleteMessage).Methods(http.MethodPut)

	api.HandleFunc("/users/search", a.searchUsers).Methods(http.MethodGet)
	api.HandleFunc("/contacts", a.listContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts/add", a.addContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/remove", a.removeContact).Methods(http.MethodPost)
	api.HandleFunc("/block", a.block).Methods(http.MethodPost)
	api.HandleFunc("/unblock", a.unblock).Methods(http.MethodPost)
	api.HandleFunc("/blocked/{userId}", a.listBlocked).Methods(http.MethodGet)

	api.HandleFunc("/upload-file", a.uploadFile("file", false)).Methods(http.MethodPost)
	api.HandleFunc("/upload-audio", a.uploadFile("audio", true)).Methods(http.MethodPost)
	api.HandleFunc("/media/{folder}/{filename}", a.serveMedia(false)).Methods(http.MethodGet)
	api.HandleFunc("/download/{folder}/{filename}", a.serveMedia(true)).Methods(http.MethodGet)

	api.HandleFunc("/stats", a.getStats).Methods(http.MethodGet)
	return r
}
