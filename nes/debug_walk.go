//go:build !windows

package nes

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// cbreakMode switches f to cbreak mode, the returned function restores the previous mode.
func cbreakMode(f *os.File) (func(), error) {
	fd := f.Fd()
	var canonical, cbreak unix.Termios
	if err := termios.Tcgetattr(fd, &canonical); err != nil {
		return nil, fmt.Errorf("walk needs a terminal: %w", err)
	}
	cbreak = canonical
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &cbreak); err != nil {
		return nil, err
	}
	return func() {
		termios.Tcsetattr(fd, termios.TCSANOW, &canonical)
	}, nil
}
