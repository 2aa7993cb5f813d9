package discovery

import (
	"strconv"
	"strings"
)

// encode builds the ASCII "type|id|port|version" wire message.
func encode(typ string, id uint32, port int, version string) string {
	var b strings.Builder
	b.WriteString(typ)
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(id), 10))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(port))
	b.WriteByte('|')
	b.WriteString(version)
	return b.String()
}

// decode parses a wire message. Fragments shorter than four fields, or
// with a non-numeric id/port, fail to parse and must be logged and
// ignored by the caller rather than treated as fatal.
func decode(msg string) (Info, bool) {
	parts := strings.Split(msg, "|")
	if len(parts) != 4 {
		return Info{}, false
	}

	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Info{}, false
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return Info{}, false
	}

	return Info{
		Type:    parts[0],
		ID:      uint32(id),
		Port:    port,
		Version: parts[3],
	}, true
}
