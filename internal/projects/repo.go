package projects

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

var _ projectsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const projectSelect = `
	SELECT
		p.id, p.title, p.description, p.problem, p.solution, p.result,
		p.image_url, p.project_url, p.github_url, p.featured, p.display_order,
		COALESCE(
			array_agg(pt.technology_name) FILTER (WHERE pt.technology_name IS NOT NULL),
			'{}'
		),
		p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN project_technologies pt ON p.id = pt.project_id`

func (r *Repo) GetAll(ctx context.Context) (_ []Project, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.GetAll")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, projectSelect+`
		GROUP BY p.id
		ORDER BY p.display_order, p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *Repo) GetFeatured(ctx context.Context) (_ []Project, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.GetFeatured")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, projectSelect+`
		WHERE p.featured = TRUE
		GROUP BY p.id
		ORDER BY p.display_order, p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *Project, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.GetByID")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, projectSelect+`
		WHERE p.id = $1
		GROUP BY p.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrProjectNotFound
	}
	return &projects[0], nil
}

// Create inserts the project and its technology rows in one transaction.
func (r *Repo) Create(ctx context.Context, newProject NewProject) (projectID int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.Create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO projects (
			title, description, problem, solution, result,
			image_url, project_url, github_url, featured, display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		newProject.Title, newProject.Description, newProject.Problem, newProject.Solution, newProject.Result,
		newProject.ImageURL, newProject.ProjectURL, newProject.GithubURL, newProject.Featured, newProject.DisplayOrder,
	).Scan(&projectID)
	if err != nil {
		return 0, err
	}

	if err = insertTechnologies(ctx, tx, projectID, newProject.Technologies); err != nil {
		return 0, err
	}

	return projectID, nil
}

// Update rewrites the given columns, keeping the stored value for every
// nil field, and replaces the technology rows when they are provided.
func (r *Repo) Update(ctx context.Context, id int, update ProjectUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.Update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE projects SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			problem = COALESCE($3, problem),
			solution = COALESCE($4, solution),
			result = COALESCE($5, result),
			image_url = COALESCE($6, image_url),
			project_url = COALESCE($7, project_url),
			github_url = COALESCE($8, github_url),
			featured = COALESCE($9, featured),
			display_order = COALESCE($10, display_order),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $11
	`,
		update.Title, update.Description, update.Problem, update.Solution, update.Result,
		update.ImageURL, update.ProjectURL, update.GithubURL, update.Featured, update.DisplayOrder,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = ErrProjectNotFound
		return err
	}

	if update.Technologies != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM project_technologies WHERE project_id = $1`, id); err != nil {
			return err
		}
		if err = insertTechnologies(ctx, tx, id, *update.Technologies); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.Delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// technology rows removed by the FK cascade
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func scanProjects(rows pgx.Rows) ([]Project, error) {
	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Problem, &p.Solution, &p.Result,
			&p.ImageURL, &p.ProjectURL, &p.GithubURL, &p.Featured, &p.DisplayOrder,
			&p.Technologies,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func insertTechnologies(ctx context.Context, tx pgx.Tx, projectID int, technologies []string) error {
	for _, tech := range technologies {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO project_technologies (project_id, technology_name) VALUES ($1, $2)`,
			projectID, tech,
		); err != nil {
			return fmt.Errorf("insert technology %q: %w", tech, err)
		}
	}
	return nil
}
