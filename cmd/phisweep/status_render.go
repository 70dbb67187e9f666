package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"phisweep/internal/privacy"
	"phisweep/internal/workflow"
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
	statusLabelWidth = 22
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
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
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusLabel turns "file_not_found" into "File Not Found".
func statusLabel(status privacy.Status) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(status.String(), "_", " "))
}

// verdictKind picks the line color for a status.
func verdictKind(status privacy.Status) statusKind {
	switch status {
	case privacy.StatusIsPHI, privacy.StatusIsPII:
		return statusWarn
	case privacy.StatusNotPHI, privacy.StatusNotPII:
		return statusOK
	case privacy.StatusIndeterminate, privacy.StatusFileNotFound:
		return statusError
	default:
		return statusInfo
	}
}

func summaryLines(summary workflow.Summary, colorize bool) []string {
	title := fmt.Sprintf("%s batch", strings.ToUpper(string(summary.Kind)))
	lines := renderSectionHeader(title, colorize)
	lines = append(lines, renderStatusLine("Batch", statusInfo, summary.BatchID, colorize))
	lines = append(lines, renderStatusLine("Fetched", statusInfo, fmt.Sprintf("%d", summary.Fetched), colorize))
	for _, status := range privacy.AllStatuses() {
		count := summary.Statuses[status]
		if count == 0 {
			continue
		}
		lines = append(lines, renderStatusLine(statusLabel(status), verdictKind(status), fmt.Sprintf("%d", count), colorize))
	}
	if summary.PersistFailures > 0 {
		lines = append(lines, renderStatusLine("Persist failures", statusError,
			fmt.Sprintf("%d (left unprocessed)", summary.PersistFailures), colorize))
	}
	if summary.Cancelled {
		lines = append(lines, renderStatusLine("Cancelled", statusWarn,
			fmt.Sprintf("%d records left for the next run", summary.Remaining()), colorize))
	}
	return lines
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
