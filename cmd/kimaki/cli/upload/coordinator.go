// Package upload brokers a file-upload request between an agent tool call
// and the sibling Discord bot process. One tool call becomes exactly one
// bounded loopback HTTP request; the user answers (or doesn't) inside
// Discord, and the outcome comes back as a plain string for the agent.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/logging"
)

const (
	// DefaultMaxFiles is used when the tool call leaves maxFiles unset.
	DefaultMaxFiles = 5
	// MinMaxFiles and MaxMaxFiles bound the caller-facing maxFiles contract.
	MinMaxFiles = 1
	MaxMaxFiles = 10

	// RequestTimeout is the client-side abort deadline. The bot process
	// resolves or abandons a prompt within 5 minutes; the extra minute makes
	// the expected terminal state a clean empty-result response from the
	// peer rather than a client-side timeout race. Keep the asymmetry.
	RequestTimeout = 6 * time.Minute

	// maxResponseBytes bounds the decoded response body.
	maxResponseBytes = 1 << 20
)

// PortProvider reports the coordination port of the bot process.
// Returns (0, false) when no port is configured, which disables the bridge.
type PortProvider interface {
	CoordinationPort() (int, bool)
}

// ThreadResolver looks up the Discord thread hosting a session.
// Returns ("", nil) when no thread is linked.
type ThreadResolver interface {
	ThreadForSession(ctx context.Context, sessionID string) (string, error)
}

// Request is the JSON body sent to the bot's /file-upload endpoint.
type Request struct {
	SessionID string `json:"sessionId"`
	ThreadID  string `json:"threadId"`
	Directory string `json:"directory"`
	Prompt    string `json:"prompt"`
	MaxFiles  int    `json:"maxFiles"`
}

// Response is the JSON body returned by the bot.
type Response struct {
	FilePaths []string `json:"filePaths,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Coordinator turns one tool call into one bounded request to the bot
// process. It never returns an error: every outcome, including transport
// failure and timeout, is a human-readable string handed back to the agent.
type Coordinator struct {
	ports   PortProvider
	threads ThreadResolver
	client  *http.Client

	// timeout is the client-side abort deadline, RequestTimeout outside tests.
	timeout time.Duration

	// baseURL overrides the loopback target (tests only).
	baseURL string
}

// NewCoordinator creates a coordinator using the given port and thread
// collaborators.
func NewCoordinator(ports PortProvider, threads ThreadResolver) *Coordinator {
	return &Coordinator{
		ports:   ports,
		threads: threads,
		client:  &http.Client{},
		timeout: RequestTimeout,
	}
}

// RequestUpload asks the user, via the bot process, to upload up to maxFiles
// files relevant to prompt. maxFiles <= 0 defaults to 5 and is clamped to
// [1, 10].
//
// The call blocks until the peer responds or the 6-minute deadline fires.
// No retries: retrying would re-prompt the user in Discord, and one tool
// call must never produce more than one prompt.
func (c *Coordinator) RequestUpload(ctx context.Context, sessionID, directory, prompt string, maxFiles int) string {
	ctx = logging.WithComponent(ctx, "upload")

	port, ok := c.ports.CoordinationPort()
	if !ok {
		return "File upload is not available: no Discord coordination port is configured."
	}

	threadID, err := c.threads.ThreadForSession(ctx, sessionID)
	if err != nil || threadID == "" {
		return "File upload is not available: no Discord thread is linked to this session."
	}

	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if maxFiles < MinMaxFiles {
		maxFiles = MinMaxFiles
	}
	if maxFiles > MaxMaxFiles {
		maxFiles = MaxMaxFiles
	}

	body, err := json.Marshal(Request{
		SessionID: sessionID,
		ThreadID:  threadID,
		Directory: directory,
		Prompt:    prompt,
		MaxFiles:  maxFiles,
	})
	if err != nil {
		return fmt.Sprintf("File upload failed: %v", err)
	}

	url := c.baseURL
	if url == "" {
		url = fmt.Sprintf("http://127.0.0.1:%d", port)
	}
	url += "/file-upload"

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("File upload failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		// The deadline firing is the expected terminal state when the user
		// walks away; it is not an error worth surfacing loudly.
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			logging.Debug(ctx, "upload request timed out",
				slog.Int64("waited_ms", time.Since(start).Milliseconds()),
			)
			return "File upload timed out: the user did not respond in time."
		}
		logging.Warn(ctx, "upload request transport failure", slog.String("error", err.Error()))
		return fmt.Sprintf("File upload failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Sprintf("File upload failed: %v", err)
	}

	var decoded Response
	// A malformed body on a failure status still produces a usable outcome,
	// so the decode error itself is ignored.
	_ = json.Unmarshal(raw, &decoded) //nolint:errcheck // handled via status/error fields below

	if resp.StatusCode/100 != 2 || decoded.Error != "" {
		reason := decoded.Error
		if reason == "" {
			reason = fmt.Sprintf("unknown error (status %d)", resp.StatusCode)
		}
		return "File upload failed: " + reason
	}

	// An empty list covers both explicit cancellation and the peer's own
	// 5-minute window expiring before our deadline.
	if len(decoded.FilePaths) == 0 {
		return "No files were uploaded."
	}

	logging.Info(ctx, "upload completed",
		slog.Int("file_count", len(decoded.FilePaths)),
		slog.Int64("waited_ms", time.Since(start).Milliseconds()),
	)
	return fmt.Sprintf("The user uploaded %d file(s):\n%s",
		len(decoded.FilePaths), strings.Join(decoded.FilePaths, "\n"))
}
