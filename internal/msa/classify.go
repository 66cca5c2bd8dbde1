package msa

import (
	"context"
	"errors"
	"strings"

	"github.com/PCL-Community/craftauth/internal/core"
)

// AAD error codes surfaced in the device-flow token response body.
const (
	errAuthorizationDeclined = "authorization_declined"
	errExpiredToken          = "expired_token"
	errBadVerificationCode   = "bad_verification_code"
)

// classifyInteractiveError maps device-flow polling outcomes onto the
// pipeline taxonomy. The deadline case covers the provider-declared
// expiry that bounds the poll.
func classifyInteractiveError(err error) *core.PipelineError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.NewPipelineError(core.StageIdentity, core.KindInteractiveTimeout,
			"the device code expired before sign-in was completed", err)
	case errors.Is(err, context.Canceled):
		return core.NewPipelineError(core.StageIdentity, core.KindInteractiveTimeout,
			"sign-in was aborted", err)
	case strings.Contains(err.Error(), errAuthorizationDeclined):
		return core.NewPipelineError(core.StageIdentity, core.KindUserDenied,
			"the sign-in request was declined", err)
	case strings.Contains(err.Error(), errExpiredToken),
		strings.Contains(err.Error(), errBadVerificationCode):
		return core.NewPipelineError(core.StageIdentity, core.KindInteractiveTimeout,
			"the device code is no longer valid", err)
	default:
		return core.NewPipelineError(core.StageIdentity, core.KindNetwork,
			"device-flow polling failed", err)
	}
}
