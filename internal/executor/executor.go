// Package executor opens catalog targets through the operating system: URLs
// in the default browser, local paths with the platform's opener. Group
// execution resolves item references lazily against the current catalog
// snapshot, so a stale reference costs nothing more than a skipped item.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dmorales/fastaccess/internal/catalog"
)

// ErrTargetNotFound is returned when a target is neither a URL with a known
// scheme nor an existing filesystem path.
var ErrTargetNotFound = errors.New("executor: target is neither a URL nor an existing path")

// ErrEmptyGroup is returned by RunGroup when none of the group's items could
// be resolved to an openable target.
var ErrEmptyGroup = errors.New("executor: group contains no resolvable items")

// Opener launches a single already-validated target. The default is
// [OSOpener]; tests inject a recorder.
type Opener interface {
	// Open hands target to the operating system. target is a URL or an
	// existing filesystem path.
	Open(ctx context.Context, target string) error
}

// OSOpener opens targets with the platform's default handler: xdg-open on
// Linux and BSDs, open on macOS, cmd /c start on Windows. The launched
// process is not supervised.
type OSOpener struct{}

// Open implements [Opener].
func (OSOpener) Open(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", "", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("executor: open %q: %w", target, err)
	}
	// Reap the opener process in the background; the target itself is
	// detached from us either way.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Executor resolves catalog entries to openable targets and hands them to an
// [Opener]. Safe for concurrent use; it holds no mutable state.
type Executor struct {
	opener Opener
}

// New returns an Executor using the given opener. A nil opener means
// [OSOpener].
func New(opener Opener) *Executor {
	if opener == nil {
		opener = OSOpener{}
	}
	return &Executor{opener: opener}
}

// RunCommand opens a single command's action. Returns [ErrTargetNotFound]
// (wrapped) when the action points nowhere.
func (e *Executor) RunCommand(ctx context.Context, cmd catalog.Command) error {
	if !isURL(cmd.Action) && !pathExists(cmd.Action) {
		return fmt.Errorf("%q: %w", cmd.Action, ErrTargetNotFound)
	}
	return e.opener.Open(ctx, cmd.Action)
}

// RunGroup opens every resolvable item of the group in order. Item
// references are resolved against snap at call time: a registered command
// name opens that command's action; otherwise the item itself is opened when
// it is a URL or an existing path; anything else is skipped silently. A
// failure to open one target does not stop the remaining items.
//
// Returns the number of targets opened. The error is [ErrEmptyGroup] when
// nothing resolved, otherwise the joined open failures (nil when all opens
// succeeded).
func (e *Executor) RunGroup(ctx context.Context, snap *catalog.Snapshot, g catalog.Group) (int, error) {
	opened := 0
	var errs []error

	for _, item := range g.Items {
		target, ok := resolveItem(snap, item)
		if !ok {
			slog.Debug("executor: skipping unresolvable group item", "group", g.Name, "item", item)
			continue
		}
		if err := e.opener.Open(ctx, target); err != nil {
			slog.Warn("executor: failed to open group item", "group", g.Name, "target", target, "err", err)
			errs = append(errs, err)
			continue
		}
		opened++
	}

	if opened == 0 && len(errs) == 0 {
		return 0, fmt.Errorf("%q: %w", g.Name, ErrEmptyGroup)
	}
	return opened, errors.Join(errs...)
}

// resolveItem turns a group item reference into an openable target:
// registered command name first, then raw URL, then existing path.
func resolveItem(snap *catalog.Snapshot, item string) (string, bool) {
	if cmd, ok := snap.Command(item); ok {
		return cmd.Action, true
	}
	if isURL(item) {
		return item, true
	}
	if pathExists(item) {
		return item, true
	}
	return "", false
}

// isURL reports whether target carries a web URL scheme.
func isURL(target string) bool {
	t := strings.ToLower(target)
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://")
}

// pathExists reports whether target exists on the local filesystem.
func pathExists(target string) bool {
	_, err := os.Stat(target)
	return err == nil
}
