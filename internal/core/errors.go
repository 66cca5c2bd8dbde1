package core

import (
	"errors"
	"fmt"
)

// Stage identifies which step of the login pipeline an error originated
// from. The set is closed; no stage is looked up dynamically.
type Stage string

const (
	StageIdentity  Stage = "identity"
	StageXbox      Stage = "xbox"
	StageXsts      Stage = "xsts"
	StageGameLogin Stage = "game-login"
	StageProfile   Stage = "profile"
	StageCache     Stage = "cache"
)

// Kind is the semantic category of a pipeline failure. The XSTS and
// profile sub-kinds are the ones that carry user-actionable meaning and
// must survive to the final result unchanged.
type Kind string

const (
	// KindFlowInit means the device-code flow could not be started.
	KindFlowInit Kind = "flow_init"

	// KindInteractiveTimeout means the device code expired before the
	// user completed verification.
	KindInteractiveTimeout Kind = "interactive_timeout"

	// KindUserDenied means the user declined the device-code request.
	KindUserDenied Kind = "user_denied"

	// KindNetwork is a transport-level failure at any stage.
	KindNetwork Kind = "network"

	// KindExchange is a generic non-2xx or malformed response from an
	// exchange endpoint.
	KindExchange Kind = "exchange"

	// KindNoLinkedAccount means the Microsoft account has no Xbox
	// account linked to it (XErr 2148916233).
	KindNoLinkedAccount Kind = "no_linked_account"

	// KindRegionUnsupported means the account is from a country where
	// Xbox Live is unavailable (XErr 2148916238).
	KindRegionUnsupported Kind = "region_unsupported"

	// KindNotEntitled means the account does not own Minecraft
	// (profile endpoint 404).
	KindNotEntitled Kind = "not_entitled"

	// KindCacheIO is a local credential-cache read/write failure. It is
	// non-fatal: the pipeline degrades to the interactive flow.
	KindCacheIO Kind = "cache_io"
)

// PipelineError is the classified error returned by every stage. The
// orchestrator inspects it with errors.As and copies Stage/Kind/Detail
// into the LoginResult verbatim.
type PipelineError struct {
	Stage  Stage
	Kind   Kind
	Detail string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Stage, e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Kind, e.Detail)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(stage Stage, kind Kind, detail string, err error) *PipelineError {
	return &PipelineError{
		Stage:  stage,
		Kind:   kind,
		Detail: detail,
		Err:    err,
	}
}

// ExchangeError is the generic failure for a non-2xx or malformed
// response at the given stage.
func ExchangeError(stage Stage, detail string, err error) *PipelineError {
	return NewPipelineError(stage, KindExchange, detail, err)
}

// NetworkError marks a transport-level failure at the given stage.
func NetworkError(stage Stage, err error) *PipelineError {
	return NewPipelineError(stage, KindNetwork, "connection failed", err)
}

// AsPipelineError extracts a PipelineError from err. If err is not one,
// it is wrapped as a generic exchange failure at the given stage, so the
// orchestrator always has a classified error to report.
func AsPipelineError(stage Stage, err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return ExchangeError(stage, "unclassified failure", err)
}

// Transient reports whether retrying the same login attempt could
// plausibly succeed without the user changing anything.
func (e *PipelineError) Transient() bool {
	return e.Kind == KindNetwork || e.Kind == KindCacheIO
}
