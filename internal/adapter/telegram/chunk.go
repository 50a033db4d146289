package telegram

import (
	"strings"
	"unicode/utf8"
)

// ChunkByLines splits text on line boundaries into chunks of at most max
// characters. Lines are never split; a single line longer than max becomes a
// chunk of its own. Joining the chunks with "\n" reproduces text exactly.
func ChunkByLines(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	open := false

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if open && currentLen+1+lineLen > max {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
			open = false
		}
		if open {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(line)
		currentLen += lineLen
		open = true
	}
	if open {
		chunks = append(chunks, current.String())
	}
	return chunks
}
