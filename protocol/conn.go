package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

// Conn frames Messages as newline-delimited JSON over a net.Conn.
type Conn struct {
	conn net.Conn
	r    *bufio.Scanner
}

func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, r: bufio.NewScanner(conn)}
}

// Read blocks until the next message arrives. It returns an error
// for malformed frames and unknown message types.
func (c *Conn) Read() (Message, error) {
	if !c.r.Scan() {
		if err := c.r.Err(); err != nil {
			return Message{}, err
		}
		return Message{}, fmt.Errorf("connection closed: %w", net.ErrClosed)
	}

	var m Message
	if err := json.Unmarshal(c.r.Bytes(), &m); err != nil {
		return Message{}, fmt.Errorf("decoding frame: %w", err)
	}
	if err := m.validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (c *Conn) Write(m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	bs, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	bs = append(bs, '\n')
	if _, err := c.conn.Write(bs); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr exposes the peer address for logging.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
