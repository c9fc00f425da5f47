package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

var _ servicesRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const serviceColumns = `id, title, description, icon_name, display_order, is_active, created_at, updated_at`

func (r *Repo) GetActive(ctx context.Context) (_ []Service, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.GetActive")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE is_active = TRUE
		ORDER BY display_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *Repo) GetAll(ctx context.Context) (_ []Service, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.GetAll")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		ORDER BY display_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *Service, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.GetByID")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var s Service
	err = r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1
	`, id).Scan(
		&s.ID, &s.Title, &s.Description, &s.IconName,
		&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Create(ctx context.Context, newService NewService) (serviceID int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.Create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	err = r.db.QueryRow(ctx, `
		INSERT INTO services (title, description, icon_name, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, newService.Title, newService.Description, newService.IconName, newService.DisplayOrder, newService.IsActive).Scan(&serviceID)
	if err != nil {
		return 0, err
	}
	return serviceID, nil
}

func (r *Repo) Update(ctx context.Context, id int, update ServiceUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.Update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `
		UPDATE services SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			icon_name = COALESCE($3, icon_name),
			display_order = COALESCE($4, display_order),
			is_active = COALESCE($5, is_active),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
	`, update.Title, update.Description, update.IconName, update.DisplayOrder, update.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "servicesRepo.Delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	services := []Service{}
	for rows.Next() {
		var s Service
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.IconName,
			&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
