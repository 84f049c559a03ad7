package domain

import (
	"strconv"
	"strings"
	"time"
)

// Message represents a chat message fetched from the platform.
// The pipeline never edits a message, it only annotates it with reactions.
type Message struct {
	ChannelID string
	TS        string // platform timestamp, ordering key and reaction target
	ThreadTS  string
	UserID    string
	Text      string
	Reactions []Reaction
}

// Reaction is one emoji already attached to a message
type Reaction struct {
	Name  string
	Users []string
	Count int
}

// HasReactionFrom reports whether any reaction on the message was added by userID
func (m *Message) HasReactionFrom(userID string) bool {
	if userID == "" {
		return false
	}
	for _, r := range m.Reactions {
		for _, u := range r.Users {
			if u == userID {
				return true
			}
		}
	}
	return false
}

// IsThreadReply checks if the message is a reply inside a thread
func (m *Message) IsThreadReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

// SentAt converts the platform timestamp ("1700000000.000100") into a time
func (m *Message) SentAt() time.Time {
	secs, frac, _ := strings.Cut(m.TS, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var micros int64
	if frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		for len(frac) < 6 {
			frac += "0"
		}
		micros, _ = strconv.ParseInt(frac, 10, 64)
	}
	return time.Unix(s, micros*int64(time.Microsecond))
}

// Channel is a configured channel to watch
type Channel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}
