package skills

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

var _ skillsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const skillSelect = `
	SELECT
		s.id, s.category_id, s.name, s.proficiency_level, s.display_order,
		sc.name, s.created_at
	FROM skills s
	JOIN skill_categories sc ON s.category_id = sc.id`

func (r *Repo) GetAll(ctx context.Context) (_ []Skill, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.GetAll")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, skillSelect+`
		ORDER BY sc.display_order, s.display_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSkills(rows)
}

func (r *Repo) GetByCategory(ctx context.Context, categoryID int) (_ []Skill, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.GetByCategory")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, skillSelect+`
		WHERE s.category_id = $1
		ORDER BY s.display_order
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSkills(rows)
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *Skill, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.GetByID")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var s Skill
	err = r.db.QueryRow(ctx, skillSelect+`
		WHERE s.id = $1
	`, id).Scan(
		&s.ID, &s.CategoryID, &s.Name, &s.ProficiencyLevel, &s.DisplayOrder,
		&s.CategoryName, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetCategories(ctx context.Context) (_ []Category, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.GetCategories")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, display_order, created_at
		FROM skill_categories
		ORDER BY display_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repo) Create(ctx context.Context, newSkill NewSkill) (skillID int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.Create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	err = r.db.QueryRow(ctx, `
		INSERT INTO skills (category_id, name, proficiency_level, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, newSkill.CategoryID, newSkill.Name, newSkill.ProficiencyLevel, newSkill.DisplayOrder).Scan(&skillID)
	if err != nil {
		return 0, err
	}
	return skillID, nil
}

func (r *Repo) Update(ctx context.Context, id int, update SkillUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.Update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `
		UPDATE skills SET
			category_id = COALESCE($1, category_id),
			name = COALESCE($2, name),
			proficiency_level = COALESCE($3, proficiency_level),
			display_order = COALESCE($4, display_order)
		WHERE id = $5
	`, update.CategoryID, update.Name, update.ProficiencyLevel, update.DisplayOrder, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.Delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func scanSkills(rows pgx.Rows) ([]Skill, error) {
	skills := []Skill{}
	for rows.Next() {
		var s Skill
		if err := rows.Scan(
			&s.ID, &s.CategoryID, &s.Name, &s.ProficiencyLevel, &s.DisplayOrder,
			&s.CategoryName, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}
