package matchday

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxEventBytes = 1 << 20

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// ReadEvents splits an event stream and calls fn for each complete event.
// It returns nil at end of stream or when fn asks to stop with
// errStreamDone.
func ReadEvents(r io.Reader, fn func(Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventBytes)

	var (
		ev   Event
		data []string
	)
	flush := func() error {
		if len(data) == 0 {
			ev = Event{}
			return nil
		}
		ev.Data = strings.Join(data, "\n")
		err := fn(ev)
		ev, data = Event{}, data[:0]
		return err
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				if errors.Is(err, errStreamDone) {
					return nil
				}
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadStream, err)
	}
	if err := flush(); err != nil && !errors.Is(err, errStreamDone) {
		return err
	}
	return nil
}
