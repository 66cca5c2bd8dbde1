package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

var (
	greenCheck = color.New(color.FgGreen).Sprint("✓")
	redCross   = color.New(color.FgRed).Sprint("✗")
	bold       = color.New(color.Bold).SprintFunc()
	faint      = color.New(color.Faint).SprintfFunc()
)

// BeQuietError signals that the command already printed a useful error
// message and the top level should just set the exit code.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "(silenced)"
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

func logError(err error, correlationID, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if correlationID != "" {
		msg = fmt.Sprintf("%s (correlation ID: %s)", msg, correlationID)
	}
	log.Error().Err(err).Msgf("%s %s", redCross, msg)
	return BeQuietError{}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
