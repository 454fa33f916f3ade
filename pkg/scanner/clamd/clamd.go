// Package clamd is a minimal client for the ClamAV daemon protocol.
//
// Only the null-terminated command form is used (zPING, zSCAN). The daemon
// must be able to read the scanned path, so it normally runs on the same host.
package clamd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"
)

// VerdictOK is the verdict of a clean file.
const VerdictOK = "OK"

// ErrUnavailable is returned when the daemon cannot be reached or does not
// answer PING. Callers treat it as "scan skipped".
var ErrUnavailable = errors.New("clamd: daemon unavailable")

// Verdicts maps a scanned path to "OK" or a threat label.
type Verdicts map[string]string

// Client talks to one clamd socket.
type Client struct {
	network string
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewClient creates a client for network ("unix" or "tcp") and address.
func NewClient(network, address string, timeout time.Duration) *Client {
	return &Client{
		network: network,
		address: address,
		timeout: timeout,
	}
}

// Ping checks that the daemon answers PONG.
func (c *Client) Ping(ctx context.Context) error {
	reply, err := c.command(ctx, "PING")
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: unexpected ping reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan asks the daemon to scan path. It returns ErrUnavailable when the
// daemon is down; any other error means the daemon answered something
// unparseable.
func (c *Client) Scan(ctx context.Context, path string) (Verdicts, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}

	reply, err := c.command(ctx, "SCAN "+abs)
	if err != nil {
		return nil, err
	}

	verdict, err := parseScanReply(reply)
	if err != nil {
		return nil, err
	}
	return Verdicts{path: verdict}, nil
}

// parseScanReply turns "<path>: OK", "<path>: <sig> FOUND" or
// "<path>: <msg> ERROR" into a verdict.
func parseScanReply(reply string) (string, error) {
	idx := strings.LastIndex(reply, ": ")
	if idx < 0 {
		return "", fmt.Errorf("clamd: malformed reply %q", reply)
	}
	status := reply[idx+2:]

	switch {
	case status == VerdictOK:
		return VerdictOK, nil
	case strings.HasSuffix(status, " FOUND"):
		return strings.TrimSuffix(status, " FOUND"), nil
	case strings.HasSuffix(status, " ERROR"):
		return "ERROR: " + strings.TrimSuffix(status, " ERROR"), nil
	default:
		return "", fmt.Errorf("clamd: malformed reply %q", reply)
	}
}

func (c *Client) command(ctx context.Context, cmd string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, c.network, c.address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte("z" + cmd + "\x00")); err != nil {
		return "", fmt.Errorf("%w: write: %v", ErrUnavailable, err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	return strings.TrimRight(reply, "\x00\n"), nil
}
