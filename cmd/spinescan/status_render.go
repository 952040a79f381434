package main

import (
	"fmt"
	"io"
	"strings"

	"spinescan/internal/deps"
	"spinescan/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
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

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}

// checkLine renders one preflight result.
func checkLine(result preflight.Result, colorize bool) string {
	kind := statusOK
	if !result.Passed {
		kind = statusError
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}

// dependencyLine renders one binary status. Missing optional binaries are
// warnings; missing required ones are errors.
func dependencyLine(status deps.Status, colorize bool) string {
	if status.Available {
		msg := fmt.Sprintf("Ready (%s)", status.Path)
		if status.Version != "" {
			msg = fmt.Sprintf("Ready (%s)", status.Version)
		}
		return renderStatusLine(status.Name, statusOK, msg, colorize)
	}
	msg := fmt.Sprintf("Missing (command: %s)", status.Command)
	if status.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, status.Detail)
	}
	kind := statusError
	if status.Optional {
		kind = statusWarn
		msg += " [optional]"
	}
	return renderStatusLine(status.Name, kind, msg, colorize)
}
