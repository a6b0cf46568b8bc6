//go:build !linux && !darwin

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// mpv IPC needs unix sockets; other platforms only get the clock backend
func newMPVElement(ctx context.Context, mpvPath string, logger *zap.Logger) (MediaElement, error) {
	return nil, fmt.Errorf("mpv backend: %w", ErrUnsupported)
}
