package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studioload/internal/scale"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
)

var titleCaser = cases.Title(language.English)

// bandLabel turns an identifier such as "very_high" into "Very High".
func bandLabel(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

func heatColor(level scale.HeatLevel) string {
	switch level {
	case scale.HeatVeryLow:
		return ansiBlue
	case scale.HeatLow:
		return ansiGreen
	case scale.HeatMedium:
		return ansiYellow
	case scale.HeatHigh:
		return ansiMagenta
	case scale.HeatVeryHigh:
		return ansiRed
	default:
		return ""
	}
}

func timelineColor(status scale.TimelineStatus) string {
	switch status {
	case scale.TimelineGood:
		return ansiGreen
	case scale.TimelineBusy:
		return ansiYellow
	case scale.TimelineWarning:
		return ansiMagenta
	case scale.TimelineOver:
		return ansiRed
	default:
		return ""
	}
}

func statusColor(status scale.Status) string {
	switch status {
	case scale.StatusGood:
		return ansiGreen
	case scale.StatusBusy:
		return ansiYellow
	case scale.StatusOver:
		return ansiRed
	default:
		return ""
	}
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
