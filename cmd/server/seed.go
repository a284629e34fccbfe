package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itnext-dev/visa-pathway/internal/config"
	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/internal/usecase"
)

type seedVisa struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Purpose             string   `yaml:"purpose"`
	Eligibility         []string `yaml:"eligibility"`
	Qualifications      string   `yaml:"qualifications"`
	Experience          string   `yaml:"experience"`
	Language            string   `yaml:"language"`
	Finance             string   `yaml:"finance"`
	ProcessingTime      string   `yaml:"processing_time"`
	SettlementPotential bool     `yaml:"settlement_potential"`
}

type seedCountry struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Flag        string     `yaml:"flag"`
	Description string     `yaml:"description"`
	Economy     string     `yaml:"economy"`
	JobMarket   string     `yaml:"job_market"`
	Education   string     `yaml:"education"`
	PRBenefits  string     `yaml:"pr_benefits"`
	Visas       []seedVisa `yaml:"visas"`
}

// seedCountries loads destination reference data from the YAML seed file.
// Upserts are idempotent; a missing file is not an error.
func seedCountries(ctx context.Context, cfg config.Config, repo domain.CountryRepository) {
	if cfg.CountrySeedFile == "" {
		return
	}
	data, err := os.ReadFile(cfg.CountrySeedFile)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("country seed read failed", slog.Any("error", err))
		}
		return
	}
	var seeds []seedCountry
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		slog.Warn("country seed parse failed", slog.Any("error", err))
		return
	}
	for _, s := range seeds {
		c := domain.Country{
			ID:          s.ID,
			Name:        s.Name,
			Flag:        s.Flag,
			Description: s.Description,
			Economy:     s.Economy,
			JobMarket:   s.JobMarket,
			Education:   s.Education,
			PRBenefits:  s.PRBenefits,
			IsActive:    true,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		for _, v := range s.Visas {
			c.Visas = append(c.Visas, domain.VisaCategory{
				ID:                  v.ID,
				Name:                v.Name,
				Purpose:             v.Purpose,
				Eligibility:         v.Eligibility,
				Qualifications:      v.Qualifications,
				Experience:          v.Experience,
				Language:            v.Language,
				Finance:             v.Finance,
				ProcessingTime:      v.ProcessingTime,
				SettlementPotential: v.SettlementPotential,
			})
		}
		if err := repo.Upsert(ctx, c); err != nil {
			slog.Warn("country seed upsert failed", slog.String("country", s.Name), slog.Any("error", err))
		}
	}
	slog.Info("country seed applied", slog.Int("count", len(seeds)))
}

// seedAdmin provisions the bootstrap admin account from environment credentials.
func seedAdmin(ctx context.Context, cfg config.Config, users domain.UserRepository) {
	if !cfg.AdminSeedEnabled() {
		return
	}
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	}
	hash, err := usecase.HashPassword(cfg.AdminPassword)
	if err != nil {
		slog.Warn("admin seed hash failed", slog.Any("error", err))
		return
	}
	u := domain.User{
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		FullName:     "Administrator",
		Provider:     domain.ProviderEmail,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if _, err := users.Create(ctx, u); err != nil {
		slog.Warn("admin seed create failed", slog.Any("error", err))
		return
	}
	slog.Info("admin account seeded", slog.String("email", cfg.AdminEmail))
}
