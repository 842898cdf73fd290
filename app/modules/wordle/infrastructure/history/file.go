package wordlehistory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"sort"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
)

// FileHistory reads an exported channel history: one JSON message per line
// in the gateway's message.received format.
type FileHistory struct {
	path string
}

// NewFileHistory creates a history backed by the JSON-lines file at path.
func NewFileHistory(path string) *FileHistory {
	return &FileHistory{path: path}
}

// Messages reads the file and yields its messages newest first. Lines that
// fail to decode are yielded as errors wrapping wordledomain.ErrMalformedMessage,
// and messages without a timestamp come before the rest, so neither can hide
// behind the backfill cutoff.
func (h *FileHistory) Messages(ctx context.Context) iter.Seq2[wordledomain.Message, error] {
	return func(yield func(wordledomain.Message, error) bool) {
		contents, err := h.load()
		if err != nil {
			yield(wordledomain.Message{}, err)
			return
		}
		for _, lineErr := range contents.malformed {
			if !yield(wordledomain.Message{}, lineErr) {
				return
			}
		}
		for _, m := range contents.messages {
			if err := ctx.Err(); err != nil {
				yield(wordledomain.Message{}, err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

type fileContents struct {
	messages  []wordledomain.Message
	malformed []error
}

func (h *FileHistory) load() (*fileContents, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	out := &fileContents{}
	var undated []wordledomain.Message
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var p wordleevents.MessageReceivedPayloadV1
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			out.malformed = append(out.malformed, fmt.Errorf("history file line %d: %w: %v", line, wordledomain.ErrMalformedMessage, err))
			continue
		}
		m := ToMessage(p)
		if !m.HasTimestamp() {
			undated = append(undated, m)
			continue
		}
		out.messages = append(out.messages, m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	sort.SliceStable(out.messages, func(i, j int) bool {
		return out.messages[i].Timestamp.After(out.messages[j].Timestamp)
	})
	out.messages = append(undated, out.messages...)
	return out, nil
}
