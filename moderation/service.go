// Package moderation censors forbidden words in user-provided text.
package moderation

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

// Result is the outcome of moderating one piece of content.
type Result struct {
	Content string
	Words   []string
	Lang    string
}

func (r Result) Censored() bool { return len(r.Words) > 0 }

// Service censors against every loaded dictionary merged, since people swear
// across languages, and tags the result with the detected language.
type Service struct {
	log       *slog.Logger
	moderator *Moderator
}

// NewService builds the moderator from the embedded dictionaries.
func NewService(log *slog.Logger, censoredChar rune) (*Service, error) {
	data, err := LoadAll(censoredFolder, "censored")
	if err != nil {
		return nil, err
	}
	return NewServiceFromData(log, data, censoredChar)
}

func NewServiceFromData(log *slog.Logger, data *CensoredData, censoredChar rune) (*Service, error) {
	moderator, err := NewModerator(data.Words, censoredChar, log)
	if err != nil {
		return nil, fmt.Errorf("building moderator: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))
	return &Service{log: log, moderator: moderator}, nil
}

func (s *Service) Moderate(content string) Result {
	if strings.TrimSpace(content) == "" {
		return Result{Content: content}
	}
	censored, words := s.moderator.Censor(content)
	res := Result{Content: censored, Words: words}
	if info := whatlanggo.Detect(content); info.IsReliable() {
		res.Lang = info.Lang.Iso6391()
	}
	if res.Censored() {
		s.log.Debug("Message moderated", "lang", res.Lang, "words", len(words))
	}
	return res
}
