package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub/internal/models"
)

type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// ListByLearner is the learner-dashboard enrollment view. Joins are LEFT so a
// missing course or instructor row degrades to "-".
func (r *EnrollmentRepository) ListByLearner(ctx context.Context, learnerID string) ([]models.EnrollmentView, error) {
	const query = `
		SELECT e.id, e.course_id, COALESCE(c.title, '-'), COALESCE(u.display_name, '-'),
		       e.enrollment_date
		FROM enrollments e
		LEFT JOIN courses c ON c.id = e.course_id
		LEFT JOIN users u ON u.id = e.instructor_id
		WHERE e.learner_id = $1
		ORDER BY e.enrollment_date DESC
	`

	rows, err := r.pool.Query(ctx, query, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.EnrollmentView
	for rows.Next() {
		var v models.EnrollmentView
		if err := rows.Scan(&v.ID, &v.CourseID, &v.CourseTitle, &v.InstructorName, &v.EnrollmentDate); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
