package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

const uniqueViolation = "23505"

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, learner_id, course_id, application_status, decision_reason,
	payment_reference, payment_reminded_at, created_at, updated_at`

func scanApplication(row pgx.Row) (models.LearnerApplication, error) {
	var a models.LearnerApplication
	err := row.Scan(
		&a.ID,
		&a.LearnerID,
		&a.CourseID,
		&a.Status,
		&a.DecisionReason,
		&a.PaymentReference,
		&a.PaymentRemindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *ApplicationRepository) Create(ctx context.Context, app models.LearnerApplication) error {
	const query = `
		INSERT INTO learner_applications (
			id, learner_id, course_id, application_status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query, app.ID, app.LearnerID, app.CourseID, app.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return workflow.ErrDuplicateApplication
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (models.LearnerApplication, error) {
	const query = `SELECT ` + applicationColumns + ` FROM learner_applications WHERE id = $1`

	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.LearnerApplication{}, &workflow.NotFoundError{Entity: workflow.EntityApplication, ID: id}
		}
		return models.LearnerApplication{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) SetStatusIf(ctx context.Context, id string, from, to models.ApplicationStatus, reason string) (bool, error) {
	const query = `
		UPDATE learner_applications
		SET application_status = $3, decision_reason = $4, updated_at = NOW()
		WHERE id = $1 AND application_status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, from, to, reason)
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

func (r *ApplicationRepository) MarkPaymentCompleted(ctx context.Context, id string, from models.ApplicationStatus, reference string) (bool, error) {
	const query = `
		UPDATE learner_applications
		SET application_status = 'payment_completed', payment_reference = $3, updated_at = NOW()
		WHERE id = $1 AND application_status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, from, reference)
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

// ApproveAndEnroll moves the application to approved and inserts the
// enrollment within one transaction. The conditional update decides the race
// winner; the UNIQUE (learner_id, course_id) constraint backstops it. Either
// both writes commit or neither does.
func (r *ApplicationRepository) ApproveAndEnroll(ctx context.Context, id string, from models.ApplicationStatus, enr models.Enrollment) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateQuery = `
		UPDATE learner_applications
		SET application_status = 'approved', updated_at = NOW()
		WHERE id = $1 AND application_status = $2
	`
	cmd, err := tx.Exec(ctx, updateQuery, id, from)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	const insertQuery = `
		INSERT INTO enrollments (
			id, learner_id, course_id, instructor_id, application_id, enrollment_date
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		enr.ID,
		enr.LearnerID,
		enr.CourseID,
		enr.InstructorID,
		enr.ApplicationID,
		enr.EnrollmentDate,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// An enrollment already exists for this (learner, course); the
			// rollback keeps the application status untouched.
			return false, nil
		}
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// ListByLearner is the learner-dashboard view. The course join is LEFT so the
// view degrades instead of failing when a course row is missing.
func (r *ApplicationRepository) ListByLearner(ctx context.Context, learnerID string) ([]models.ApplicationView, error) {
	const query = `
		SELECT a.id, a.course_id, COALESCE(c.title, '-'), a.application_status,
		       a.created_at, a.updated_at
		FROM learner_applications a
		LEFT JOIN courses c ON c.id = a.course_id
		WHERE a.learner_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.ApplicationView
	for rows.Next() {
		var v models.ApplicationView
		if err := rows.Scan(&v.ID, &v.CourseID, &v.CourseTitle, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.NextStep = v.Status.NextStepHint()
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status models.ApplicationStatus, limit, offset int) ([]models.LearnerApplication, error) {
	const query = `
		SELECT ` + applicationColumns + ` FROM learner_applications
		WHERE application_status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.LearnerApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// ListPaymentReminderTargets returns applications sitting in pending_payment
// longer than olderThan that have not been reminded yet.
func (r *ApplicationRepository) ListPaymentReminderTargets(ctx context.Context, olderThan time.Time) ([]models.PaymentReminderTarget, error) {
	const query = `
		SELECT a.id, COALESCE(c.title, '-'), u.email, u.display_name
		FROM learner_applications a
		JOIN users u ON u.id = a.learner_id
		LEFT JOIN courses c ON c.id = a.course_id
		WHERE a.application_status = 'pending_payment'
		  AND a.updated_at < $1
		  AND a.payment_reminded_at IS NULL
		ORDER BY a.updated_at
	`

	rows, err := r.pool.Query(ctx, query, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.PaymentReminderTarget
	for rows.Next() {
		var t models.PaymentReminderTarget
		if err := rows.Scan(&t.ApplicationID, &t.CourseTitle, &t.LearnerEmail, &t.LearnerName); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (r *ApplicationRepository) MarkPaymentReminded(ctx context.Context, id string) error {
	const query = `
		UPDATE learner_applications SET payment_reminded_at = NOW() WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
