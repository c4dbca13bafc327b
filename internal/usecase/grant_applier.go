package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ GrantApplier = (*grantApplier)(nil)

// GrantApplier performs a validated code's effect. Both methods must run in
// the caller's transaction so that the usage increment, the effect and the
// ledger entry commit or roll back together.
type GrantApplier interface {
	// Check reports a grant the user already holds: ErrAlreadyEnrolled for
	// programs, ErrAlreadyGranted for roles.
	Check(ctx context.Context, tx repository.Tx, code *model.AccessCode, userID string) error
	// Apply consumes one use of code and grants its effect to userID.
	Apply(ctx context.Context, tx repository.Tx, code *model.AccessCode, userID string, now time.Time) (*Grant, error)
}

// Grant is what Apply produced.
type Grant struct {
	Redemption  *model.Redemption
	TargetTitle string
	UsesAfter   int
}

type grantApplier struct {
	codes       repository.AccessCodeRepository
	profiles    repository.ProfileRepository
	programs    repository.ProgramRepository
	enrollments repository.EnrollmentRepository
	redemptions repository.RedemptionRepository
}

func NewGrantApplier(
	codes repository.AccessCodeRepository,
	profiles repository.ProfileRepository,
	programs repository.ProgramRepository,
	enrollments repository.EnrollmentRepository,
	redemptions repository.RedemptionRepository,
) *grantApplier {
	return &grantApplier{
		codes:       codes,
		profiles:    profiles,
		programs:    programs,
		enrollments: enrollments,
		redemptions: redemptions,
	}
}

func (g *grantApplier) Check(ctx context.Context, tx repository.Tx, code *model.AccessCode, userID string) error {
	switch code.EffectKind {
	case model.EffectProgram:
		_, err := g.enrollments.Find(ctx, tx, userID, code.EffectTarget)
		switch {
		case err == nil:
			return domain.ErrAlreadyEnrolled
		case errors.Is(err, domain.ErrNotFound):
			return nil
		default:
			return err
		}
	case model.EffectRole:
		p, err := g.profiles.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if string(p.Role) == code.EffectTarget {
			return domain.ErrAlreadyGranted
		}
		return nil
	}
	return fmt.Errorf("%w: unknown effect %q", domain.ErrInvalidCode, code.EffectKind)
}

func (g *grantApplier) Apply(ctx context.Context, tx repository.Tx, code *model.AccessCode, userID string, now time.Time) (*Grant, error) {
	// Resolve the target before any write so a misconfigured code changes nothing.
	var (
		role    model.Role
		program *model.Program
	)
	switch code.EffectKind {
	case model.EffectRole:
		r, ok := model.ParseRole(code.EffectTarget)
		if !ok {
			return nil, fmt.Errorf("%w: code targets unknown role %q", domain.ErrInvalidCode, code.EffectTarget)
		}
		role = r
	case model.EffectProgram:
		p, err := g.programs.FindByID(ctx, tx, code.EffectTarget)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: code targets unknown program %q", domain.ErrInvalidCode, code.EffectTarget)
		}
		if err != nil {
			return nil, err
		}
		program = p
	default:
		return nil, fmt.Errorf("%w: unknown effect %q", domain.ErrInvalidCode, code.EffectKind)
	}

	uses, err := g.codes.IncrementUsage(ctx, tx, code.ID, now)
	if err != nil {
		return nil, err
	}

	grant := &Grant{UsesAfter: uses}
	if program != nil {
		e := model.NewEnrollment(userID, program, code.Code, now)
		if err := g.enrollments.Insert(ctx, tx, e); err != nil {
			return nil, err
		}
		grant.TargetTitle = program.Title
	} else {
		if err := g.profiles.SetRole(ctx, tx, userID, role); err != nil {
			return nil, err
		}
		grant.TargetTitle = string(role)
	}

	grant.Redemption = model.NewRedemption(code, userID, now)
	if err := g.redemptions.Insert(ctx, tx, grant.Redemption); err != nil {
		return nil, err
	}
	return grant, nil
}
