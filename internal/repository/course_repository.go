package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, instructor_id, title, description, price_cents, status, created_at, updated_at`

func scanCourse(row pgx.Row) (models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID,
		&c.InstructorID,
		&c.Title,
		&c.Description,
		&c.PriceCents,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *CourseRepository) Create(ctx context.Context, course models.Course) error {
	const query = `
		INSERT INTO courses (
			id, instructor_id, title, description, price_cents, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		course.ID,
		course.InstructorID,
		course.Title,
		course.Description,
		course.PriceCents,
		course.Status,
	)
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, &workflow.NotFoundError{Entity: workflow.EntityCourse, ID: id}
		}
		return models.Course{}, err
	}
	return course, nil
}

func (r *CourseRepository) SetStatusIf(ctx context.Context, id string, from, to models.CourseStatus) (bool, error) {
	const query = `
		UPDATE courses SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	const query = `
		SELECT ` + courseColumns + ` FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListApproved is the public catalog view. The instructor join is LEFT so a
// missing owner row degrades the name to "-" instead of dropping the course.
func (r *CourseRepository) ListApproved(ctx context.Context, limit, offset int) ([]models.CourseListing, error) {
	const query = `
		SELECT c.id, c.title, c.description, c.price_cents, c.status,
		       COALESCE(u.display_name, '-')
		FROM courses c
		LEFT JOIN users u ON u.id = c.instructor_id
		WHERE c.status = 'approved'
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.CourseListing
	for rows.Next() {
		var l models.CourseListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.PriceCents, &l.Status, &l.InstructorName); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *CourseRepository) ListPending(ctx context.Context) ([]models.Course, error) {
	const query = `
		SELECT ` + courseColumns + ` FROM courses
		WHERE status = 'pending'
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
