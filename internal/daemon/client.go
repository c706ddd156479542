package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/triskellib/vscode/internal/host"
)

// DialTimeout bounds connecting to the daemon socket.
const DialTimeout = 5 * time.Second

// Client speaks the host protocol to llcfgd over its Unix socket. Each
// client owns one daemon session, so a document loaded through it stays
// loaded for later commands. Not safe for concurrent use.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	sc   *bufio.Scanner
	seq  int64

	// Timeout applies to each Send round trip. Zero disables it.
	Timeout time.Duration
}

// Dial connects to the daemon socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", resolveSocket(socketPath), DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	return &Client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		sc:      sc,
		Timeout: 30 * time.Second,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send issues one command and waits for its response. A missing ID is
// filled with a sequence number. Errors reported by the daemon are returned
// as errors.
func (c *Client) Send(cmd host.Command) (host.Response, error) {
	if cmd.ID == "" {
		c.seq++
		cmd.ID = strconv.FormatInt(c.seq, 10)
	}
	if c.Timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.Timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	if err := c.enc.Encode(cmd); err != nil {
		return host.Response{}, fmt.Errorf("sending command: %w", err)
	}
	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return host.Response{}, fmt.Errorf("reading response: %w", err)
		}
		return host.Response{}, fmt.Errorf("reading response: connection closed")
	}

	var resp host.Response
	if err := json.Unmarshal(c.sc.Bytes(), &resp); err != nil {
		return host.Response{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return resp, nil
}

// Call sends a command with params and decodes the result into out. A nil
// out discards the result.
func (c *Client) Call(typ string, params, out any) error {
	cmd := host.Command{Type: typ}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding params: %w", err)
		}
		cmd.Params = data
	}
	resp, err := c.Send(cmd)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// Ping asks a running daemon for its status.
func Ping(socketPath string) (*host.StatusResult, error) {
	c, err := Dial(socketPath)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	c.Timeout = 5 * time.Second

	var st host.StatusResult
	if err := c.Call(host.CmdStatus, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// sendStop asks the daemon to shut down without waiting for it to exit.
func sendStop(socketPath string) error {
	c, err := Dial(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()
	c.Timeout = 5 * time.Second
	return c.Call(host.CmdStop, nil, nil)
}
