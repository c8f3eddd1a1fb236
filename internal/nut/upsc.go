package nut

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUpscNotFound is returned when the upsc binary is not on PATH.
var ErrUpscNotFound = errors.New("nut: upsc binary not found")

// Compile-time interface check.
var _ Source = (*UpscSource)(nil)

// UpscSource fetches a sample by running `upsc <target>` with a bounded
// timeout. target is the NUT identifier, e.g. "myups@192.168.1.20".
type UpscSource struct {
	target  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewUpscSource returns an UpscSource for the given NUT target. A timeout
// of zero or less falls back to 3 seconds.
func NewUpscSource(target string, timeout time.Duration, log zerolog.Logger) *UpscSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &UpscSource{target: target, timeout: timeout, log: log}
}

// Fetch runs upsc and parses its output. All failure modes (missing binary,
// timeout, non-zero exit, empty output) surface as errors with distinct
// descriptions; the command never hangs past the configured timeout.
func (s *UpscSource) Fetch(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Debug().Str("target", s.target).Msg("running upsc")

	cmd := exec.CommandContext(ctx, "upsc", s.target)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("nut: upsc timed out after %s", s.timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, ErrUpscNotFound
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("nut: upsc failed: %w: %s", err, detail)
	}

	vars := Parse(stdout.String())
	if len(vars) == 0 {
		return nil, ErrNoData
	}
	s.log.Debug().Int("keys", len(vars)).Msg("parsed upsc output")
	return vars, nil
}
