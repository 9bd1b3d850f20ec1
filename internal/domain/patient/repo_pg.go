package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

const uniqueViolation = "23505"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, medical_record_number, first_name, last_name, date_of_birth,
	gender, cancer_type, cancer_stage, treatment_status, assigned_doctor_id,
	phone, email, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MedicalRecordNumber, &p.FirstName, &p.LastName,
		&p.DateOfBirth, &p.Gender, &p.CancerType, &p.CancerStage,
		&p.TreatmentStatus, &p.AssignedDoctorID, &p.Phone, &p.Email,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, medical_record_number, first_name, last_name,
			date_of_birth, gender, cancer_type, cancer_stage, treatment_status,
			assigned_doctor_id, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		p.ID, p.MedicalRecordNumber, p.FirstName, p.LastName, p.DateOfBirth,
		p.Gender, p.CancerType, p.CancerStage, p.TreatmentStatus,
		p.AssignedDoctorID, p.Phone, p.Email)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Wrap(apperrors.Conflict,
				"a patient with this medical record number already exists", err)
		}
		return apperrors.Wrap(apperrors.Storage, "failed to create patient", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "patient not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Storage, "failed to load patient", err)
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Search != "" {
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR medical_record_number ILIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.CancerType != "" {
		where += fmt.Sprintf(` AND cancer_type = $%d`, idx)
		args = append(args, f.CancerType)
		idx++
	}
	if f.CancerStage != "" {
		where += fmt.Sprintf(` AND cancer_stage = $%d`, idx)
		args = append(args, f.CancerStage)
		idx++
	}
	if f.TreatmentStatus != "" {
		where += fmt.Sprintf(` AND treatment_status = $%d`, idx)
		args = append(args, f.TreatmentStatus)
		idx++
	}
	if f.AssignedDoctorID != nil {
		where += fmt.Sprintf(` AND assigned_doctor_id = $%d`, idx)
		args = append(args, *f.AssignedDoctorID)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Storage, "failed to count patients", err)
	}

	query := `SELECT ` + cols + ` FROM patients` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Storage, "failed to list patients", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(apperrors.Storage, "failed to scan patient", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
