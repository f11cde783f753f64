package moderation

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"strings"
)

// CensoredData carries the result of the loading process including metadata for logging.
type CensoredData struct {
	Words      []string
	Languages  []string
	ByLanguage map[string][]string
}

// LoadAll reads every .txt file of dir as the dictionary of the language named
// by the file ("fr.txt" -> "fr"), one word per line.
func LoadAll(fsys fs.FS, dir string) (*CensoredData, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	data := &CensoredData{ByLanguage: make(map[string][]string)}
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".txt")

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// Scanner copes with \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(content))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			data.ByLanguage[lang] = append(data.ByLanguage[lang], line)
			uniqueWords[line] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		data.Languages = append(data.Languages, lang)
	}

	if len(uniqueWords) == 0 {
		return nil, fmt.Errorf("no censored words found in %s", dir)
	}
	data.Words = make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		data.Words = append(data.Words, w)
	}
	return data, nil
}
