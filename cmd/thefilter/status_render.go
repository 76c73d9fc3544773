package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// statusKind selects the badge and color for one check line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func (k statusKind) badge() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return "\x1b[32m"
	case statusWarn:
		return "\x1b[33m"
	case statusError:
		return "\x1b[31m"
	case statusInfo:
		return "\x1b[34m"
	default:
		return ""
	}
}

const ansiReset = "\x1b[0m"

// renderStatusLine formats one aligned check result, e.g.
//
//	Run database:    [OK] ~/.local/share/thefilter/thefilter.db (3 runs)
//
// Only the badge is colored, so messages containing paths or URLs stay
// selectable as plain text.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + kind.badge() + "]"
	if colorize {
		if color := kind.color(); color != "" {
			badge = color + badge + ansiReset
		}
	}
	line := fmt.Sprintf("  %-18s %s", label+":", badge)
	if message != "" {
		line += " " + message
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
