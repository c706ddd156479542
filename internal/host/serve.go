package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds one request line; setFileContent carries whole files.
const maxLineBytes = 64 << 20

// Serve reads one JSON command per line from r and writes one JSON
// response per line to w. It returns nil at end of input, after a stop
// command, or when ctx is cancelled. Malformed lines get an error response
// and the loop continues.
func Serve(ctx context.Context, s *Session, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-s.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading commands: %w", err)
					}
				default:
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}

			var resp Response
			var cmd Command
			if err := json.Unmarshal([]byte(line), &cmd); err != nil {
				resp = Response{Error: fmt.Sprintf("decode error: %v", err)}
			} else {
				resp = s.Handle(cmd)
			}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}
}
