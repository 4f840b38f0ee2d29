package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

// ParseHold parses a command-line key hold "key:down[:up]", e.g. "g:10:40"
// holds g from tick 10 until tick 40. Without up the key is never released.
func ParseHold(spec string) ([]KeyEvent, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("key hold %q: want key:down[:up]", spec)
	}
	if utf8.RuneCountInString(parts[0]) != 1 {
		return nil, fmt.Errorf("key hold %q: key must be a single character", spec)
	}
	down, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("key hold %q: %w", spec, err)
	}
	if down < 0 {
		return nil, dynamo.Bounded("down", down, ">= 0")
	}
	events := []KeyEvent{{Tick: down, Key: parts[0], Down: true}}
	if len(parts) == 3 {
		up, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("key hold %q: %w", spec, err)
		}
		if up <= down {
			return nil, dynamo.Bounded("up", up, fmt.Sprintf("> %d", down))
		}
		events = append(events, KeyEvent{Tick: up, Key: parts[0], Down: false})
	}
	return events, nil
}
