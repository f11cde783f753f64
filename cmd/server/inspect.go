package main

import (
	"chat-signal/domain"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mama165/sdk-go/database"
)

// RecordMapper labels badger rows for the debug inspector.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	switch {
	case strings.HasPrefix(key, "msg:"):
		row.Type = "MESSAGE"
		var m domain.Message
		if err := json.Unmarshal(val, &m); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		state := ""
		if m.IsDeleted {
			state = " [deleted]"
		} else if m.IsEdited {
			state = " [edited]"
		}
		row.Detail = fmt.Sprintf("%s -> %s: %q%s", m.SenderID, m.ReceiverID, m.Content, state)
	case strings.HasPrefix(key, "user:"):
		row.Type = "USER"
		var u domain.User
		if err := json.Unmarshal(val, &u); err == nil {
			row.Detail = fmt.Sprintf("%s (%s)", u.DisplayName, u.Status)
		}
	case strings.HasPrefix(key, "conv:"):
		row.Type = "INDEX"
	case strings.HasPrefix(key, "contact:"):
		row.Type = "CONTACT"
	case strings.HasPrefix(key, "block:"):
		row.Type = "BLOCK"
	}
	return row
}
