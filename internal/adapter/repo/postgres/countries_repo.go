package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// CountryRepo persists destination reference data.
type CountryRepo struct{ Pool PgxPool }

// NewCountryRepo constructs a CountryRepo with the given pool.
func NewCountryRepo(p PgxPool) *CountryRepo { return &CountryRepo{Pool: p} }

// Upsert inserts or replaces a country by id. Used by seeding and creation.
func (r *CountryRepo) Upsert(ctx domain.Context, c domain.Country) error {
	tracer := otel.Tracer("repo.countries")
	ctx, span := tracer.Start(ctx, "countries.Upsert")
	defer span.End()

	visas, err := json.Marshal(c.Visas)
	if err != nil {
		return fmt.Errorf("op=country.upsert: %w", err)
	}
	q := `INSERT INTO countries (id, name, flag, description, economy, job_market, education, pr_benefits, visas, is_active, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
	ON CONFLICT (id)
	DO UPDATE SET name=EXCLUDED.name, flag=EXCLUDED.flag, description=EXCLUDED.description, economy=EXCLUDED.economy,
		job_market=EXCLUDED.job_market, education=EXCLUDED.education, pr_benefits=EXCLUDED.pr_benefits,
		visas=EXCLUDED.visas, is_active=EXCLUDED.is_active, updated_at=EXCLUDED.updated_at`
	_, err = r.Pool.Exec(ctx, q, c.ID, c.Name, c.Flag, c.Description, c.Economy, c.JobMarket, c.Education, c.PRBenefits, visas, c.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=country.upsert: %w", err)
	}
	return nil
}

// Update replaces a country's fields by id.
func (r *CountryRepo) Update(ctx domain.Context, c domain.Country) error {
	visas, err := json.Marshal(c.Visas)
	if err != nil {
		return fmt.Errorf("op=country.update: %w", err)
	}
	q := `UPDATE countries SET name=$2, flag=$3, description=$4, economy=$5, job_market=$6, education=$7, pr_benefits=$8, visas=$9, updated_at=$10 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, c.ID, c.Name, c.Flag, c.Description, c.Economy, c.JobMarket, c.Education, c.PRBenefits, visas, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=country.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: country %s", domain.ErrNotFound, c.ID)
	}
	return nil
}

// Deactivate hides a country from the public list.
func (r *CountryRepo) Deactivate(ctx domain.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE countries SET is_active=FALSE, updated_at=$2 WHERE id=$1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=country.deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: country %s", domain.ErrNotFound, id)
	}
	return nil
}

const countryColumns = `id, name, flag, description, economy, job_market, education, pr_benefits, visas, is_active, created_at, updated_at`

func scanCountry(row pgx.Row) (domain.Country, error) {
	var c domain.Country
	var visas []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Flag, &c.Description, &c.Economy, &c.JobMarket, &c.Education, &c.PRBenefits, &visas, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Country{}, err
	}
	if len(visas) > 0 {
		_ = json.Unmarshal(visas, &c.Visas)
	}
	if c.Visas == nil {
		c.Visas = []domain.VisaCategory{}
	}
	return c, nil
}

// GetByID loads one country.
func (r *CountryRepo) GetByID(ctx domain.Context, id string) (domain.Country, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+countryColumns+` FROM countries WHERE id=$1`, id)
	c, err := scanCountry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Country{}, fmt.Errorf("%w: country %s", domain.ErrNotFound, id)
		}
		return domain.Country{}, fmt.Errorf("op=country.get: %w", err)
	}
	return c, nil
}

// ListActive returns every active country ordered by name.
func (r *CountryRepo) ListActive(ctx domain.Context) ([]domain.Country, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+countryColumns+` FROM countries WHERE is_active=TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("op=country.list: %w", err)
	}
	defer rows.Close()
	countries := make([]domain.Country, 0)
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("op=country.list: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}
