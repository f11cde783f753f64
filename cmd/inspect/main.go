// Command inspect prints the users, contacts and messages held in a badger
// store. It opens the database read-only so it can run next to a live server.
package main

import (
	"chat-signal/domain"
	"chat-signal/repositories"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Settings struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	Section        string `envconfig:"INSPECT_SECTION" default:"all"`
	Limit          int    `envconfig:"INSPECT_LIMIT" default:"50"`
	Colours        bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var settings Settings
	if err := envconfig.Process("", &settings); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if len(os.Args) > 1 {
		settings.Section = os.Args[1]
	}

	// BypassLockGuard lets the inspector open a directory the server holds
	opts := badger.DefaultOptions(settings.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := inspect(os.Stdout, db, settings); err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

func inspect(out io.Writer, db *badger.DB, settings Settings) error {
	users, err := repositories.NewUserRepository(db).ListUsers()
	if err != nil {
		return err
	}
	section := strings.ToLower(settings.Section)

	if section == "all" || section == "users" {
		renderUsers(out, users, settings.Colours)
	}
	if section == "all" || section == "contacts" {
		if err := renderContacts(out, repositories.NewContactRepository(db), users); err != nil {
			return err
		}
	}
	if section == "all" || section == "messages" {
		messages, err := latestMessages(db, settings.Limit)
		if err != nil {
			return err
		}
		renderMessages(out, messages)
	}
	return nil
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetBorder(false)
	return table
}

func renderUsers(out io.Writer, users []domain.User, colours bool) {
	fmt.Fprintf(out, "\nUSERS (%d)\n", len(users))
	table := newTable(out, "ID", "Display name", "Status", "Last seen")
	for _, user := range users {
		status := string(user.Status)
		if colours {
			status = statusColour(user.Status).Render(status)
		}
		table.Append([]string{user.ID, user.DisplayName, status, formatTime(user.LastSeen)})
	}
	table.Render()
}

func statusColour(status domain.Status) color.Style {
	if status == domain.StatusOnline {
		return color.New(color.FgGreen, color.OpBold)
	}
	return color.New(color.FgGray)
}

func renderContacts(out io.Writer, contacts repositories.IContactRepository, users []domain.User) error {
	fmt.Fprintln(out, "\nCONTACTS")
	table := newTable(out, "User", "Contacts", "Blocked")
	for _, user := range users {
		list, err := contacts.ListContacts(user.ID)
		if err != nil {
			return err
		}
		blocked, err := contacts.ListBlocked(user.ID)
		if err != nil {
			return err
		}
		table.Append([]string{user.ID, strings.Join(list, ", "), strings.Join(blocked, ", ")})
	}
	table.Render()
	return nil
}

// latestMessages keeps the most recent limit messages, oldest first.
func latestMessages(db *badger.DB, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte("msg:")
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var message domain.Message
				if err := json.Unmarshal(val, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func renderMessages(out io.Writer, messages []domain.Message) {
	fmt.Fprintf(out, "\nMESSAGES (%d)\n", len(messages))
	table := newTable(out, "Time", "From", "To", "Type", "Flags", "Content")
	for _, message := range messages {
		table.Append([]string{
			formatTime(message.Timestamp),
			message.SenderID,
			message.ReceiverID,
			string(message.Type),
			flags(message),
			truncate(message.Content, 48),
		})
	}
	table.Render()
}

func flags(message domain.Message) string {
	var b strings.Builder
	for _, flag := range []struct {
		letter string
		set    bool
	}{
		{"D", message.Delivered},
		{"R", message.Read},
		{"E", message.IsEdited},
		{"X", message.IsDeleted},
	} {
		if flag.set {
			b.WriteString(flag.letter)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…(" + strconv.Itoa(len(runes)) + ")"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
