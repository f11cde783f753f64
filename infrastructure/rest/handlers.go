package rest

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type mutateRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type pairRequest struct {
	UserID1 string `json:"userId1"`
	UserID2 string `json:"userId2"`
}

type contactRequest struct {
	UserID        string `json:"userId"`
	ContactID     string `json:"contactId"`
	BlockUserID   string `json:"blockUserId"`
	UnblockUserID string `json:"unblockUserId"`
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	userA, err := actor(r, r.URL.Query().Get("userId1"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	messages, err := a.messages.LoadHistory(userA, r.URL.Query().Get("userId2"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"messages": nonNil(messages)})
}

func (a *API) searchMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userA, err := actor(r, q.Get("userId1"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	messages, err := a.messages.Search(r.Context(), userA, q.Get("userId2"), q.Get("q"), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"messages": nonNil(messages)})
}

func (a *API) clearHistory(w http.ResponseWriter, r *http.Request) {
	var body pairRequest
	if err := decodeBody(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	userA, err := actor(r, body.UserID1)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	cleared, err := a.messages.ClearHistory(r.Context(), userA, body.UserID2)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"message": "Chat history cleared successfully", "cleared": cleared})
}

func (a *API) editMessage(w http.ResponseWriter, r *http.Request) {
	id, body, err := a.mutation(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	message, err := a.messages.Edit(r.Context(), domain.EditMessageCommand{MessageID: id, UserID: body.UserID, Content: body.Content})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"message": "Message edited successfully", "updatedMessage": message})
}

func (a *API) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, body, err := a.mutation(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err = a.messages.Delete(r.Context(), domain.DeleteMessageCommand{MessageID: id, UserID: body.UserID}); err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"message": "Message deleted successfully"})
}

func (a *API) mutation(r *http.Request) (uuid.UUID, mutateRequest, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, mutateRequest{}, fmt.Errorf("%w: message id", errors.ErrValidation)
	}
	var body mutateRequest
	if err = decodeBody(r, &body); err != nil {
		return uuid.Nil, mutateRequest{}, err
	}
	body.UserID, err = actor(r, body.UserID)
	return id, body, err
}

func (a *API) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := actor(r, q.Get("currentUserId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	users, err := a.contacts.SearchUsers(userID, q.Get("query"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"users": nonNil(users)})
}

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) {
	userID, err := actor(r, r.URL.Query().Get("userId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	contacts, err := a.contacts.ListContacts(userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"contacts": nonNil(contacts)})
}

func (a *API) addContact(w http.ResponseWriter, r *http.Request) {
	a.contactAction(w, r, "Contact added successfully", func(body contactRequest) error {
		return a.contacts.AddContact(r.Context(), body.UserID, body.ContactID)
	})
}

func (a *API) removeContact(w http.ResponseWriter, r *http.Request) {
	a.contactAction(w, r, "Contact removed successfully", func(body contactRequest) error {
		return a.contacts.RemoveContact(r.Context(), body.UserID, body.ContactID)
	})
}

func (a *API) block(w http.ResponseWriter, r *http.Request) {
	a.contactAction(w, r, "User blocked successfully", func(body contactRequest) error {
		return a.contacts.Block(r.Context(), body.UserID, body.BlockUserID)
	})
}

func (a *API) unblock(w http.ResponseWriter, r *http.Request) {
	a.contactAction(w, r, "User unblocked successfully", func(body contactRequest) error {
		return a.contacts.Unblock(r.Context(), body.UserID, body.UnblockUserID)
	})
}

func (a *API) contactAction(w http.ResponseWriter, r *http.Request, done string, action func(contactRequest) error) {
	var body contactRequest
	err := decodeBody(r, &body)
	if err == nil {
		body.UserID, err = actor(r, body.UserID)
	}
	if err == nil {
		err = action(body)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"message": done})
}

func (a *API) listBlocked(w http.ResponseWriter, r *http.Request) {
	userID, err := actor(r, mux.Vars(r)["userId"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	blocked, err := a.contacts.ListBlocked(userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, map[string]any{"blockedUsers": nonNil(blocked)})
}

func (a *API) uploadFile(field string, asAudio bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxFileSize+1<<20)
		file, header, err := r.FormFile(field)
		if err != nil {
			a.fail(w, r, fmt.Errorf("%w: no %s uploaded", errors.ErrValidation, field))
			return
		}
		defer file.Close()

		var duration *float64
		if raw := r.FormValue("duration"); raw != "" {
			if d, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				duration = &d
			}
		}
		descriptor, err := a.uploads.Store(header.Filename, file, asAudio, duration)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		ok(w, map[string]any{"message": "File uploaded successfully", "file": descriptor})
	}
}

func (a *API) serveMedia(download bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		path, err := a.uploads.Path(vars["folder"], vars["filename"])
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if download {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", vars["filename"]))
		}
		http.ServeFile(w, r, path)
	}
}

func (a *API) getStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]any{}
	if a.stats != nil {
		stats = a.stats()
	}
	ok(w, map[string]any{"stats": stats})
}

// nonNil keeps empty lists as [] on the wire.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
