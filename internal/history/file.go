package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/lox/headsup/internal/game"
)

// File appends one JSON object per finished hand to a file.
type File struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	return &File{file: f, enc: json.NewEncoder(f)}, nil
}

func (f *File) RecordHandStart(context.Context, game.HandContext) error {
	return nil
}

func (f *File) RecordHandEnd(_ context.Context, hand game.HandContext, final game.FinalStacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(NewHandRecord(hand, final)); err != nil {
		return fmt.Errorf("failed to write hand %d: %w", hand.HandNumber, err)
	}
	return nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// ReadFile loads every hand written by a File.
func ReadFile(path string) ([]HandRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []HandRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var r HandRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, r)
	}
	return records, scanner.Err()
}
