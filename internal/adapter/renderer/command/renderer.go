package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"cartographer/internal/domain/artifact"

	"go.uber.org/zap"
)

const maxOutputTail = 2048

var ErrRendererCommandMissing = errors.New("renderer command not configured")

// Renderer runs an external world renderer. The renderer receives the path of
// a JSON config as its last argument and writes to a scratch file that is
// renamed over the base map once the process exits cleanly.
type Renderer struct {
	Command string
	Args    []string
	Timeout time.Duration
	Logger  *zap.Logger
}

func (r Renderer) Render(ctx context.Context, cfg artifact.RenderConfig) error {
	if strings.TrimSpace(r.Command) == "" {
		return ErrRendererCommandMissing
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	scratch := scratchPath(cfg.OutputPath)
	defer os.Remove(scratch)

	configPath, err := writeConfig(toRendererConfig(cfg, scratch))
	if err != nil {
		return err
	}
	defer os.Remove(configPath)

	args := append(append([]string{}, r.Args...), configPath)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	started := time.Now()
	runErr := cmd.Run()
	r.logger().Debug("renderer finished",
		zap.String("command", r.Command),
		zap.Duration("took", time.Since(started)),
		zap.String("output", tail(out.String())))
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("run renderer: %w", ctxErr)
		}
		return fmt.Errorf("run renderer: %w: %s", runErr, tail(out.String()))
	}

	info, err := os.Stat(scratch)
	if err != nil {
		return fmt.Errorf("renderer produced no image: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("renderer produced an empty image")
	}
	if err := os.Rename(scratch, cfg.OutputPath); err != nil {
		return fmt.Errorf("move rendered image into place: %w", err)
	}
	return nil
}

func (r Renderer) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func scratchPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".rendering" + ext
}

func writeConfig(cfg rendererConfig) (string, error) {
	f, err := os.CreateTemp("", "cartographer-render-*.json")
	if err != nil {
		return "", fmt.Errorf("create renderer config: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write renderer config: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close renderer config: %w", err)
	}
	return f.Name(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputTail {
		return "..." + s[len(s)-maxOutputTail:]
	}
	return s
}
