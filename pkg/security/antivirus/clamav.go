package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// clamd accepts chunks up to StreamMaxLength; stay well below the default.
const streamChunkSize = 64 * 1024

// ClamAVScanner connects to a clamd daemon and streams files with zINSTREAM
type ClamAVScanner struct {
	address string        // TCP address (host:port) or Unix socket path
	timeout time.Duration // Connection and scan timeout
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner.
// address: TCP "localhost:3310" or Unix socket "/var/run/clamav/clamd.sock"
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{
		address: address,
		timeout: timeout,
	}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping checks that clamd answers PONG.
func (c *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to clamd: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return err
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply: %q", reply)
	}
	return nil
}

func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	conn, err := c.dial(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to connect to clamd: %w", err)
		return result
	}
	defer conn.Close()

	if err := writeStream(conn, data); err != nil {
		result.Error = err
		return result
	}

	reply, err := readReply(conn)
	if err != nil {
		result.Error = err
		return result
	}

	result.Infected, result.ThreatName, result.Error = parseReply(reply)
	return result
}

func writeStream(w io.Writer, data []byte) error {
	if _, err := w.Write([]byte("zINSTREAM\x00")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(data) {
			end = len(data)
		}
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := w.Write(size); err != nil {
			return fmt.Errorf("failed to send chunk size: %w", err)
		}
		if _, err := w.Write(data[start:end]); err != nil {
			return fmt.Errorf("failed to send file data: %w", err)
		}
	}

	// zero-length chunk terminates the stream
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return fmt.Errorf("failed to send end marker: %w", err)
	}
	return nil
}

func readReply(r io.Reader) (string, error) {
	buf, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil && len(buf) == 0 {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(string(buf), "\x00")), nil
}

// parseReply understands:
// "stream: OK", "stream: Eicar-Signature FOUND", "stream: <message> ERROR"
func parseReply(reply string) (bool, string, error) {
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}

	switch {
	case body == "OK":
		return false, "", nil
	case strings.HasSuffix(body, " FOUND"):
		return true, strings.TrimSuffix(body, " FOUND"), nil
	case strings.HasSuffix(body, " ERROR"):
		return false, "", fmt.Errorf("scan error: %s", reply)
	default:
		return false, "", fmt.Errorf("unexpected clamd reply: %q", reply)
	}
}
