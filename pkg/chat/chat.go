package chat

import "encoding/json"

// Message represents a Minecraft JSON chat message.
type Message struct {
	Text          string    `json:"text"`
	Bold          bool      `json:"bold,omitempty"`
	Italic        bool      `json:"italic,omitempty"`
	Underlined    bool      `json:"underlined,omitempty"`
	Strikethrough bool      `json:"strikethrough,omitempty"`
	Obfuscated    bool      `json:"obfuscated,omitempty"`
	Color         string    `json:"color,omitempty"`
	Extra         []Message `json:"extra,omitempty"`
}

// String serializes the message to JSON, kept for callers (logging,
// legacy fixtures) that still want the full rich-text tree.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Flatten reduces the message tree to a single plain string: its own text
// followed by each Extra entry's flattened text, in order. Styling fields
// are dropped because the wire encoding the server writes
// (protocol.WriteTextComponent) only carries a flat {"text":"..."} NBT
// compound, not a styled tree.
func (m Message) Flatten() string {
	out := m.Text
	for _, extra := range m.Extra {
		out += extra.Flatten()
	}
	return out
}

// Text creates a simple text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored text message.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}
