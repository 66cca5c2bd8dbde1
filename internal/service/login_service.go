// Package service sequences the five login stages into one uniform
// result. It is the single control-flow decision point of the
// pipeline: every stage either advances to the next or stops the run.
package service

import (
	"context"

	"github.com/rs/xid"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/logging"
)

// LoginService chains identity acquisition and the three federated
// token exchanges into a playable profile. Stages run strictly in
// order; each output is the sole input of the next. Not safe for
// concurrent invocations sharing one credential cache.
type LoginService struct {
	authenticator core.Authenticator
	platform      core.PlatformExchanger
	security      core.SecurityExchanger
	game          core.GameExchanger
	profiles      core.ProfileResolver
	logger        logging.InternalLogger

	newID func() string
}

func NewLoginService(
	authenticator core.Authenticator,
	platform core.PlatformExchanger,
	security core.SecurityExchanger,
	game core.GameExchanger,
	profiles core.ProfileResolver,
	logger logging.InternalLogger,
) *LoginService {
	return &LoginService{
		authenticator: authenticator,
		platform:      platform,
		security:      security,
		game:          game,
		profiles:      profiles,
		logger:        logger,
		newID:         func() string { return xid.New().String() },
	}
}

// Login runs the pipeline once, blocking until it completes or the
// first stage fails. The returned result is immutable; the failure
// branch carries the originating stage and classified kind verbatim.
func (s *LoginService) Login(ctx context.Context) core.LoginResult {
	correlationID := s.newID()

	identity, err := s.authenticator.Acquire(ctx)
	if err != nil {
		return s.fail(correlationID, core.StageIdentity, err)
	}
	s.logger.Info("signed in to Microsoft account %s", identity.Account)

	platform, err := s.platform.Exchange(ctx, identity)
	if err != nil {
		return s.fail(correlationID, core.StageXbox, err)
	}
	s.logger.Info("obtained Xbox Live token")

	security, err := s.security.Exchange(ctx, platform)
	if err != nil {
		return s.fail(correlationID, core.StageXsts, err)
	}
	s.logger.Info("obtained XSTS token")

	game, err := s.game.Exchange(ctx, security)
	if err != nil {
		return s.fail(correlationID, core.StageGameLogin, err)
	}
	s.logger.Info("obtained Minecraft token (valid for %ds)", game.ExpiresIn)

	profile, err := s.profiles.Resolve(ctx, game)
	if err != nil {
		return s.fail(correlationID, core.StageProfile, err)
	}
	s.logger.Info("resolved profile %s (%s)", profile.Name, profile.ID)

	return core.LoginResult{
		Success:       true,
		CorrelationID: correlationID,
		Token:         game,
		Profile:       profile,
		Account:       identity.Account,
	}
}

func (s *LoginService) fail(correlationID string, stage core.Stage, err error) core.LoginResult {
	pe := core.AsPipelineError(stage, err)
	s.logger.Error("login failed at stage %s: %s", pe.Stage, pe.Detail)

	return core.LoginResult{
		Success:       false,
		CorrelationID: correlationID,
		Stage:         pe.Stage,
		Kind:          pe.Kind,
		Detail:        pe.Detail,
	}
}
