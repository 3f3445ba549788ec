// Package opener hands links to the desktop's default application.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/pequod/internal/config"
	"github.com/pders01/pequod/internal/debuglog"
)

var ErrNoLink = errors.New("entry has no link")

type Launcher struct {
	opener string
	goos   string
	// start launches the command without waiting for it to exit.
	start func(cmd *exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	opener := ""
	if cfg != nil {
		opener = cfg.Media.DefaultOpener
	}
	return &Launcher{
		opener: opener,
		goos:   runtime.GOOS,
		start:  startDetached,
	}
}

// Open launches the configured opener for link and returns once the
// process has started.
func (l *Launcher) Open(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return ErrNoLink
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) link", link)
	}

	cmd := l.command(link)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	debuglog.Debugf("opened %s with %s", link, cmd.Path)
	return nil
}

func (l *Launcher) command(link string) *exec.Cmd {
	opener := l.opener
	if opener == "" {
		opener = defaultOpener(l.goos)
	}
	if l.goos == "windows" && opener == "start" {
		// start is a cmd builtin; the empty argument is the window title
		return exec.Command("cmd", "/c", "start", "", link)
	}
	return exec.Command(opener, link)
}

func defaultOpener(goos string) string {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
