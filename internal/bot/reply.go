package bot

import (
	"strings"
	"unicode/utf8"
)

// Embed colors, matching the chat platform's palette.
const (
	ColorGold    = 0xF1C40F
	ColorRed     = 0xE74C3C
	ColorGreen   = 0x2ECC71
	ColorOrange  = 0xE67E22
	ColorBlurple = 0x5865F2
)

// Message is an incoming chat message.
type Message struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Field is a titled block inside a reply.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Reply is a transport-neutral rendering of a command result. Transports
// that support rich embeds use the structured parts; others use Text.
type Reply struct {
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Color       int     `json:"color,omitempty" yaml:"color,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty" yaml:"footer,omitempty"`
}

func textReply(s string) Reply {
	return Reply{Description: s}
}

// Text renders the reply as plain chat text.
func (r Reply) Text() string {
	var parts []string
	if r.Title != "" {
		parts = append(parts, "**"+r.Title+"**")
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	for _, f := range r.Fields {
		parts = append(parts, f.Name+"\n"+f.Value)
	}
	if r.Footer != "" {
		parts = append(parts, "_"+r.Footer+"_")
	}
	return strings.Join(parts, "\n")
}

// Chunks splits Text into messages of at most maxLen bytes, breaking on line
// boundaries. A single line longer than maxLen is split mid-line.
// maxLen <= 0 returns the whole text as one chunk.
func (r Reply) Chunks(maxLen int) []string {
	text := r.Text()
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxLen {
			flush()
			cut := cutPoint(line, maxLen)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > maxLen {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

// cutPoint backs off from limit so a multi-byte rune is never split.
func cutPoint(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
