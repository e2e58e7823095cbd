package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	apperrors "github.com/allisson/citadel/internal/errors"
)

// FileSink appends one JSON object per line to a log file, fsyncing after
// every write so a verified entry is never lost to a buffered write that
// didn't make it to disk.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink builds a FileSink writing to path, creating it if absent.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open audit log file")
	}
	_ = f.Close()
	return &FileSink{path: path}, nil
}

// WriteEntry appends entry as a single JSON line.
func (s *FileSink) WriteEntry(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return apperrors.Wrap(err, "failed to open audit log file")
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry")
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return apperrors.Wrap(err, "failed to write audit entry")
	}
	return f.Sync()
}

// Entries reads and decodes every line in the log file, in order.
func (s *FileSink) Entries(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to open audit log file")
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode audit entry")
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read audit log file")
	}
	return entries, nil
}
