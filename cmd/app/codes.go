package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/usecase"
)

// codesCmd gives operators the admin code surface without going through HTTP.
func newCodesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage access codes",
	}
	cmd.AddCommand(newCodesCreateCmd(opts), newCodesListCmd(opts), newCodesToggleCmd(opts))
	return cmd
}

func withCodesUC(ctx context.Context, opts *rootOptions, fn func(uc usecase.AccessCodeUseCase) error) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	r := newRepos(pool, nil)
	return fn(usecase.NewAccessCodeUseCase(r.codes, r.programs, r.redemptions, r.tm, logger))
}

func newCodesCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		code, kind, target string
		maxUses, count     int
		expires            time.Duration
		inactive           bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one code, or --count generated codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.CreateCodeInput{
				Code:         code,
				EffectKind:   model.EffectKind(strings.ToLower(kind)),
				EffectTarget: target,
				MaxUses:      maxUses,
				Inactive:     inactive,
			}
			if expires > 0 {
				at := time.Now().Add(expires)
				in.ExpiresAt = &at
			}
			return withCodesUC(cmd.Context(), opts, func(uc usecase.AccessCodeUseCase) error {
				var created []*model.AccessCode
				if count > 1 {
					out, err := uc.Generate(cmd.Context(), "", in, count)
					if err != nil {
						return err
					}
					created = out
				} else {
					ac, err := uc.Create(cmd.Context(), "", in)
					if err != nil {
						return err
					}
					created = []*model.AccessCode{ac}
				}
				return printCodes(cmd, created)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&code, "code", "", "literal code (generated when empty)")
	f.StringVar(&kind, "kind", string(model.EffectProgram), "effect kind: program or role")
	f.StringVar(&target, "target", "", "program id or role name")
	f.IntVar(&maxUses, "max-uses", 1, "maximum number of redemptions")
	f.IntVar(&count, "count", 1, fmt.Sprintf("number of generated codes (max %d)", usecase.MaxGenerateBatch))
	f.DurationVar(&expires, "expires-in", 0, "expiry relative to now, e.g. 720h (0 means never)")
	f.BoolVar(&inactive, "inactive", false, "create the code disabled")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newCodesListCmd(opts *rootOptions) *cobra.Command {
	var (
		search, kind string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List access codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodesUC(cmd.Context(), opts, func(uc usecase.AccessCodeUseCase) error {
				codes, err := uc.List(cmd.Context(), repository.AccessCodeFilter{
					EffectKind: model.EffectKind(strings.ToLower(kind)),
					Search:     strings.ToUpper(search),
					Limit:      limit,
				})
				if err != nil {
					return err
				}
				return printCodes(cmd, codes)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "code prefix")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by effect kind")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}

func newCodesToggleCmd(opts *rootOptions) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "toggle <code-id>",
		Short: "Enable or disable an access code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodesUC(cmd.Context(), opts, func(uc usecase.AccessCodeUseCase) error {
				ac, err := uc.SetActive(cmd.Context(), args[0], active)
				if err != nil {
					return err
				}
				return printCodes(cmd, []*model.AccessCode{ac})
			})
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "desired state")
	return cmd
}

func printCodes(cmd *cobra.Command, codes []*model.AccessCode) error {
	now := time.Now()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tKIND\tTARGET\tUSES\tSTATE\tEXPIRES")
	for _, c := range codes {
		expires := "-"
		if c.ExpiresAt != nil {
			expires = c.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			c.ID, c.Code, c.EffectKind, c.EffectTarget, c.CurrentUses, c.MaxUses, c.State(now), expires)
	}
	return tw.Flush()
}
