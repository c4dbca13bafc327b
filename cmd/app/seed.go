package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/usecase"
)

const demoPassword = "demo12345"

type seedProfile struct {
	email, name string
	role        model.Role
}

type seedProgram struct {
	id, title, description string
	lessons                int
	purchaseURL            string
}

var (
	demoProfiles = []seedProfile{
		{"admin@demo.com", "Demo Admin", model.RoleAdmin},
		{"teacher@demo.com", "Demo Teacher", model.RoleTeacher},
		{"media@demo.com", "Demo Media", model.RoleMedia},
		{"hr@demo.com", "Demo HR", model.RoleHR},
		{"user@demo.com", "Demo Learner", model.RoleUser},
	}
	demoPrograms = []seedProgram{
		{"akademi-tumbuh-kita", "Akademi Tumbuh Kita", "Parenting dan tumbuh kembang anak", 20, "https://tumbuhkita.id/akademi"},
		{"zaad", "ZAAD", "Bekal bisnis dan pemasaran digital", 25, "https://tumbuhkita.id/zaad"},
		{"program-kolaborasi", "Program Kolaborasi", "Kelas kolaborasi bersama mitra", 12, "https://tumbuhkita.id/kolaborasi"},
		{"ebook-premium", "E-Book Premium", "Koleksi e-book eksklusif", 1, ""},
		{"artikel-premium", "Artikel Premium", "Akses artikel berbayar", 1, ""},
	}
	demoCodes = []usecase.CreateCodeInput{
		{Code: "AKTKITA2024", EffectKind: model.EffectProgram, EffectTarget: "akademi-tumbuh-kita", MaxUses: 1000},
		{Code: "ZAAD2024", EffectKind: model.EffectProgram, EffectTarget: "zaad", MaxUses: 500},
		{Code: "KOLABORASI24", EffectKind: model.EffectProgram, EffectTarget: "program-kolaborasi", MaxUses: 200},
		{Code: "EBOOK2024", EffectKind: model.EffectProgram, EffectTarget: "ebook-premium", MaxUses: 1000},
		{Code: "ARTIKEL2024", EffectKind: model.EffectProgram, EffectTarget: "artikel-premium", MaxUses: 1000},
		{Code: "ADMIN2024", EffectKind: model.EffectRole, EffectTarget: string(model.RoleAdmin), MaxUses: 5},
		{Code: "HR2024", EffectKind: model.EffectRole, EffectTarget: string(model.RoleHR), MaxUses: 10},
	}
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo profiles, programs and access codes (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			r := newRepos(pool, nil)
			s := &seeder{
				repos: r,
				auth:  newAuthUseCase(cfg, r, nil, logger),
				codes: usecase.NewAccessCodeUseCase(r.codes, r.programs, r.redemptions, r.tm, logger),
				log:   logger,
			}
			if err := s.run(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed complete; demo password is %q\n", demoPassword)
			return nil
		},
	}
}

type seeder struct {
	*repos
	auth  usecase.AuthUseCase
	codes usecase.AccessCodeUseCase
	log   *zerolog.Logger
}

func (s *seeder) run(ctx context.Context) error {
	var adminID string
	for _, sp := range demoProfiles {
		p, err := s.profile(ctx, sp)
		if err != nil {
			return fmt.Errorf("seed profile %s: %w", sp.email, err)
		}
		if sp.role == model.RoleAdmin {
			adminID = p.ID
		}
	}

	for _, sp := range demoPrograms {
		p, err := model.NewProgram(sp.id, sp.title, sp.description, sp.lessons, sp.purchaseURL)
		if err != nil {
			return fmt.Errorf("seed program %s: %w", sp.id, err)
		}
		if err := s.programs.Save(ctx, repository.NoTX, p); err != nil {
			return fmt.Errorf("seed program %s: %w", sp.id, err)
		}
	}

	for _, in := range demoCodes {
		_, err := s.codes.Create(ctx, adminID, in)
		switch {
		case err == nil:
			s.log.Info().Str("code", in.Code).Msg("seeded access code")
		case errors.Is(err, domain.ErrAlreadyExists):
			s.log.Debug().Str("code", in.Code).Msg("access code already present")
		default:
			return fmt.Errorf("seed code %s: %w", in.Code, err)
		}
	}
	return nil
}

func (s *seeder) profile(ctx context.Context, sp seedProfile) (*model.Profile, error) {
	p, err := s.auth.Register(ctx, sp.email, demoPassword, sp.name)
	if errors.Is(err, domain.ErrAlreadyExists) {
		p, err = s.profiles.FindByEmail(ctx, repository.NoTX, sp.email)
	}
	if err != nil {
		return nil, err
	}
	if p.Role != sp.role {
		if err := s.profiles.SetRole(ctx, repository.NoTX, p.ID, sp.role); err != nil {
			return nil, err
		}
		p.Role = sp.role
	}
	return p, nil
}
