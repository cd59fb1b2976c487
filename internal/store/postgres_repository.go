/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to pensioners, admins, payout schedules, payment history and notifications.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pensiontrack/pension-service/internal/domain"
)

var (
	ErrPensionerNotFound        = errors.New("pensioner not found")
	ErrAdminNotFound            = errors.New("admin not found")
	ErrScheduleNotFound         = errors.New("schedule not found")
	ErrDuplicateSeniorCitizenID = errors.New("senior citizen id already registered")
	ErrDuplicateAdminUsername   = errors.New("admin username already registered")
)

const pgUniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePensioner inserts a newly registered pensioner with status 'pending'.
func (r *PostgresRepository) CreatePensioner(ctx context.Context, pensioner *domain.Pensioner) error {
	query := `
		INSERT INTO pensioners (
			id, fullname, senior_citizen_id, contact_number, sex, civil_status,
			address, birthdate, password_hash, valid_id, payout_amount, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		pensioner.ID,
		pensioner.FullName,
		pensioner.SeniorCitizenID,
		pensioner.ContactNumber,
		pensioner.Sex,
		pensioner.CivilStatus,
		pensioner.Address,
		pensioner.Birthdate,
		pensioner.PasswordHash,
		pensioner.ValidID,
		pensioner.PayoutAmount,
		pensioner.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSeniorCitizenID
		}
		return err
	}
	return nil
}

const pensionerColumns = `
	id, fullname, senior_citizen_id, contact_number, sex, civil_status, address,
	birthdate, password_hash, valid_id, payout_amount, status, created_at
`

func scanPensioner(row pgx.Row) (*domain.Pensioner, error) {
	var p domain.Pensioner
	err := row.Scan(
		&p.ID, &p.FullName, &p.SeniorCitizenID, &p.ContactNumber, &p.Sex,
		&p.CivilStatus, &p.Address, &p.Birthdate, &p.PasswordHash, &p.ValidID,
		&p.PayoutAmount, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPensionerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPensionerByID retrieves a pensioner from the database by their ID.
func (r *PostgresRepository) FindPensionerByID(ctx context.Context, pensionerID uuid.UUID) (*domain.Pensioner, error) {
	query := `SELECT ` + pensionerColumns + ` FROM pensioners WHERE id = $1`
	return scanPensioner(r.db.QueryRow(ctx, query, pensionerID))
}

// FindPensionerBySeniorCitizenID retrieves a pensioner by their uniqueness key.
func (r *PostgresRepository) FindPensionerBySeniorCitizenID(ctx context.Context, seniorCitizenID string) (*domain.Pensioner, error) {
	query := `SELECT ` + pensionerColumns + ` FROM pensioners WHERE senior_citizen_id = $1`
	return scanPensioner(r.db.QueryRow(ctx, query, seniorCitizenID))
}

// FindPensionersByStatus retrieves all pensioners in a given lifecycle status.
func (r *PostgresRepository) FindPensionersByStatus(ctx context.Context, status string) ([]domain.Pensioner, error) {
	query := `SELECT ` + pensionerColumns + ` FROM pensioners WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pensioners []domain.Pensioner
	for rows.Next() {
		var p domain.Pensioner
		if err := rows.Scan(
			&p.ID, &p.FullName, &p.SeniorCitizenID, &p.ContactNumber, &p.Sex,
			&p.CivilStatus, &p.Address, &p.Birthdate, &p.PasswordHash, &p.ValidID,
			&p.PayoutAmount, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		pensioners = append(pensioners, p)
	}
	return pensioners, rows.Err()
}

// FindApprovedPensioners retrieves all currently-approved pensioners.
func (r *PostgresRepository) FindApprovedPensioners(ctx context.Context) ([]domain.Pensioner, error) {
	return r.FindPensionersByStatus(ctx, domain.PensionerStatusApproved)
}

// CountPensioners returns the total pensioner count.
func (r *PostgresRepository) CountPensioners(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pensioners`).Scan(&count)
	return count, err
}

// CountPensionersByStatus returns the pensioner count for one lifecycle status.
func (r *PostgresRepository) CountPensionersByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pensioners WHERE status = $1`, status).Scan(&count)
	return count, err
}

// UpdatePensionerStatus transitions a pensioner's lifecycle status. When a
// payout amount accompanies an approval it is applied in the same statement;
// a nil amount leaves the stored amount untouched.
func (r *PostgresRepository) UpdatePensionerStatus(ctx context.Context, pensionerID uuid.UUID, status string, payoutAmount *float64) error {
	query := `
		UPDATE pensioners
		SET status = $1, payout_amount = COALESCE($2, payout_amount)
		WHERE id = $3
	`
	result, err := r.db.Exec(ctx, query, status, payoutAmount, pensionerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPensionerNotFound
	}
	return nil
}

// UpdatePensionerPayoutAmount sets the pensioner's current monthly payout amount.
func (r *PostgresRepository) UpdatePensionerPayoutAmount(ctx context.Context, pensionerID uuid.UUID, amount float64) error {
	result, err := r.db.Exec(ctx, `UPDATE pensioners SET payout_amount = $1 WHERE id = $2`, amount, pensionerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPensionerNotFound
	}
	return nil
}

// UpdatePensionerProfile applies the provided profile fields, leaving nil
// fields unchanged.
func (r *PostgresRepository) UpdatePensionerProfile(ctx context.Context, pensionerID uuid.UUID, params UpdatePensionerProfileParams) error {
	query := `
		UPDATE pensioners
		SET fullname       = COALESCE($1, fullname),
		    contact_number = COALESCE($2, contact_number),
		    address        = COALESCE($3, address),
		    birthdate      = COALESCE($4, birthdate)
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query,
		params.FullName, params.ContactNumber, params.Address, params.Birthdate, pensionerID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPensionerNotFound
	}
	return nil
}

// DeletePensioner removes a pensioner and their owned payment-history and
// notification rows in a single transaction. The explicit cascade keeps the
// schedule_payout rows intact; only the pensioner's own records go.
func (r *PostgresRepository) DeletePensioner(ctx context.Context, pensionerID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM payment_history WHERE pensioner_id = $1`, pensionerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE pensioner_id = $1`, pensionerID); err != nil {
		return err
	}
	result, err := tx.Exec(ctx, `DELETE FROM pensioners WHERE id = $1`, pensionerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPensionerNotFound
	}

	return tx.Commit(ctx)
}

// CreateAdmin inserts a new administrator account.
func (r *PostgresRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (id, username, password_hash) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, admin.ID, admin.Username, admin.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAdminUsername
		}
		return err
	}
	return nil
}

// FindAdminByID retrieves an administrator by ID.
func (r *PostgresRepository) FindAdminByID(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error) {
	var a domain.Admin
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE id = $1`
	err := r.db.QueryRow(ctx, query, adminID).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAdminByUsername retrieves an administrator by username.
func (r *PostgresRepository) FindAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateScheduleWithFanOut inserts a payout schedule plus its fanned-out
// payment-history and notification rows atomically. If any insert fails the
// whole unit rolls back, leaving no partial schedule behind.
func (r *PostgresRepository) CreateScheduleWithFanOut(ctx context.Context, schedule *domain.SchedulePayout, payments []domain.PaymentHistory, notifications []domain.Notification) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	scheduleQuery := `
		INSERT INTO schedule_payout (
			schedule_id, payout_date, payout_location, start_time, end_time, status
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, scheduleQuery,
		schedule.ScheduleID,
		schedule.PayoutDate,
		schedule.PayoutLocation,
		schedule.StartTime,
		schedule.EndTime,
		schedule.Status,
	); err != nil {
		return err
	}

	if len(payments) > 0 {
		paymentQuery := `
			INSERT INTO payment_history (id, pensioner_id, schedule_id, payout_amount, status)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, payment := range payments {
			if _, err := tx.Exec(ctx, paymentQuery,
				payment.ID,
				payment.PensionerID,
				payment.ScheduleID,
				payment.PayoutAmount,
				payment.Status,
			); err != nil {
				return err
			}
		}
	}

	if len(notifications) > 0 {
		notificationQuery := `
			INSERT INTO notifications (id, pensioner_id, message, location, time, date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, notification := range notifications {
			if _, err := tx.Exec(ctx, notificationQuery,
				notification.ID,
				notification.PensionerID,
				notification.Message,
				notification.Location,
				notification.Time,
				notification.Date,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// ListSchedules retrieves all payout schedules, newest payout date first.
func (r *PostgresRepository) ListSchedules(ctx context.Context) ([]domain.SchedulePayout, error) {
	query := `
		SELECT schedule_id, payout_date, payout_location, start_time, end_time, status, created_at
		FROM schedule_payout
		ORDER BY payout_date DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.SchedulePayout
	for rows.Next() {
		var s domain.SchedulePayout
		if err := rows.Scan(
			&s.ScheduleID, &s.PayoutDate, &s.PayoutLocation, &s.StartTime,
			&s.EndTime, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// FindScheduleByID retrieves one payout schedule.
func (r *PostgresRepository) FindScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.SchedulePayout, error) {
	var s domain.SchedulePayout
	query := `
		SELECT schedule_id, payout_date, payout_location, start_time, end_time, status, created_at
		FROM schedule_payout
		WHERE schedule_id = $1
	`
	err := r.db.QueryRow(ctx, query, scheduleID).Scan(
		&s.ScheduleID, &s.PayoutDate, &s.PayoutLocation, &s.StartTime,
		&s.EndTime, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ReleaseDuePayouts promotes every schedule whose payout date has passed from
// 'scheduled' to 'released' in one batch, returning the number of rows
// touched. Zero qualifying rows means zero writes.
func (r *PostgresRepository) ReleaseDuePayouts(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE schedule_payout
		SET status = $1
		WHERE payout_date < $2 AND status = $3
	`
	result, err := r.db.Exec(ctx, query, domain.PayoutStatusReleased, now, domain.PayoutStatusScheduled)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const paymentRecordQuery = `
	SELECT ph.id, ph.schedule_id, ph.pensioner_id, ph.payout_amount,
	       sp.payout_date, sp.payout_location, sp.start_time, sp.end_time
	FROM payment_history ph
	JOIN schedule_payout sp ON sp.schedule_id = ph.schedule_id
`

func scanPaymentRecords(rows pgx.Rows) ([]domain.PaymentRecord, error) {
	defer rows.Close()

	var records []domain.PaymentRecord
	for rows.Next() {
		var rec domain.PaymentRecord
		if err := rows.Scan(
			&rec.ID, &rec.ScheduleID, &rec.PensionerID, &rec.PayoutAmount,
			&rec.PayoutDate, &rec.PayoutLocation, &rec.StartTime, &rec.EndTime,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListPaymentsForPensioner retrieves one pensioner's payment rows joined to
// their parent schedules, newest payout date first. The stored status column
// is deliberately not selected; callers derive status from the payout date.
func (r *PostgresRepository) ListPaymentsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.PaymentRecord, error) {
	query := paymentRecordQuery + ` WHERE ph.pensioner_id = $1 ORDER BY sp.payout_date DESC`
	rows, err := r.db.Query(ctx, query, pensionerID)
	if err != nil {
		return nil, err
	}
	return scanPaymentRecords(rows)
}

// ListPayments retrieves payment rows for the admin view, optionally filtered
// to one pensioner.
func (r *PostgresRepository) ListPayments(ctx context.Context, pensionerID *uuid.UUID) ([]domain.PaymentRecord, error) {
	if pensionerID != nil {
		return r.ListPaymentsForPensioner(ctx, *pensionerID)
	}
	rows, err := r.db.Query(ctx, paymentRecordQuery+` ORDER BY sp.payout_date DESC`)
	if err != nil {
		return nil, err
	}
	return scanPaymentRecords(rows)
}

// ListNotificationsForPensioner retrieves a pensioner's notification inbox,
// newest payout date first.
func (r *PostgresRepository) ListNotificationsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.Notification, error) {
	query := `
		SELECT id, pensioner_id, message, location, time, date, created_at
		FROM notifications
		WHERE pensioner_id = $1
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query, pensionerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.PensionerID, &n.Message, &n.Location, &n.Time, &n.Date, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
