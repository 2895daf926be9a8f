package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
	"garagehub/pkg/platform/tx"
)

// PostgresStore persists KYC records in PostgreSQL. Document slots and the
// variable-length collections are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `id, expert_id, status, current_step,
	business_license_number, business_license_expiry, insurance_policy_number, insurance_expiry, insurance_provider,
	id_type, id_number,
	business_license_document, insurance_certificate, id_document_front, id_document_back, utility_bill,
	background_check_consent, background_check_status, criminal_record_disclosure, criminal_record_details,
	certifications, professional_references,
	completion_percentage, required_documents_uploaded, submitted_at, reviewed_at, approved_at, rejection_reason,
	created_at, updated_at`

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) conn(ctx context.Context) queryer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

// GetOrCreate inserts an empty record unless one exists, then reads it back.
// Concurrent first visits race on the unique expert_id and all observe the
// same row.
func (s *PostgresStore) GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Record, error) {
	fresh := models.NewRecord(id.KYCRecordID(uuid.New()), expertID, now)
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO kyc_records (id, expert_id, status, current_step, completion_percentage,
			required_documents_uploaded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (expert_id) DO NOTHING`,
		uuid.UUID(fresh.ID), uuid.UUID(expertID), fresh.Status, fresh.CurrentStep,
		fresh.CompletionPercentage, fresh.RequiredDocumentsUploaded, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create kyc record: %w", err)
	}
	return s.FindByExpertID(ctx, expertID)
}

func (s *PostgresStore) FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM kyc_records WHERE expert_id = $1`, uuid.UUID(expertID))
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find kyc record: %w", err)
	}
	return r, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, applies validate and
// mutate, and writes the row back only when mutate reports a change.
func (s *PostgresStore) Execute(ctx context.Context, expertID id.ExpertID, validate func(*models.Record) error, mutate func(*models.Record) bool) (*models.Record, error) {
	var result *models.Record
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		row := sqlTx.QueryRowContext(ctx,
			`SELECT `+recordColumns+` FROM kyc_records WHERE expert_id = $1 FOR UPDATE`, uuid.UUID(expertID))
		r, err := scanRecord(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock kyc record: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		if mutate(r) {
			if err := update(ctx, sqlTx, r); err != nil {
				return err
			}
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByStatus returns records in status ordered by last update, oldest first.
func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM kyc_records WHERE status = $1 ORDER BY updated_at ASC LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, fmt.Errorf("list kyc records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kyc record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list kyc records: %w", err)
	}
	return out, nil
}

func update(ctx context.Context, sqlTx *sql.Tx, r *models.Record) error {
	docs := make([]any, 0, 5)
	for _, d := range []*models.Document{
		r.BusinessLicenseDocument, r.InsuranceCertificate, r.IDDocumentFront, r.IDDocumentBack, r.UtilityBill,
	} {
		raw, err := marshalNullable(d)
		if err != nil {
			return err
		}
		docs = append(docs, raw)
	}
	certs, err := marshalList(r.Certifications)
	if err != nil {
		return err
	}
	refs, err := marshalList(r.ProfessionalReferences)
	if err != nil {
		return err
	}

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE kyc_records SET
			status = $2, current_step = $3,
			business_license_number = $4, business_license_expiry = $5,
			insurance_policy_number = $6, insurance_expiry = $7, insurance_provider = $8,
			id_type = $9, id_number = $10,
			business_license_document = $11, insurance_certificate = $12,
			id_document_front = $13, id_document_back = $14, utility_bill = $15,
			background_check_consent = $16, background_check_status = $17,
			criminal_record_disclosure = $18, criminal_record_details = $19,
			certifications = $20, professional_references = $21,
			completion_percentage = $22, required_documents_uploaded = $23,
			submitted_at = $24, reviewed_at = $25, approved_at = $26, rejection_reason = $27,
			updated_at = $28
		WHERE id = $1`,
		uuid.UUID(r.ID), r.Status, r.CurrentStep,
		r.BusinessLicenseNumber, nullTime(r.BusinessLicenseExpiry),
		r.InsurancePolicyNumber, nullTime(r.InsuranceExpiry), r.InsuranceProvider,
		r.IDType, r.IDNumber,
		docs[0], docs[1], docs[2], docs[3], docs[4],
		r.BackgroundCheckConsent, r.BackgroundCheckStatus,
		r.CriminalRecordDisclosure, r.CriminalRecordDetails,
		certs, refs,
		r.CompletionPercentage, r.RequiredDocumentsUploaded,
		nullTime(r.SubmittedAt), nullTime(r.ReviewedAt), nullTime(r.ApprovedAt), r.RejectionReason,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update kyc record: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var (
		r                                    models.Record
		recordID, expertID                   uuid.UUID
		licenseExpiry, insuranceExpiry       sql.NullTime
		submittedAt, reviewedAt, approvedAt  sql.NullTime
		license, insurance, front, back      []byte
		bill, certs, refs                    []byte
		status, idType, bgStatus, disclosure string
	)
	err := row.Scan(
		&recordID, &expertID, &status, &r.CurrentStep,
		&r.BusinessLicenseNumber, &licenseExpiry, &r.InsurancePolicyNumber, &insuranceExpiry, &r.InsuranceProvider,
		&idType, &r.IDNumber,
		&license, &insurance, &front, &back, &bill,
		&r.BackgroundCheckConsent, &bgStatus, &disclosure, &r.CriminalRecordDetails,
		&certs, &refs,
		&r.CompletionPercentage, &r.RequiredDocumentsUploaded, &submittedAt, &reviewedAt, &approvedAt, &r.RejectionReason,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.ID = id.KYCRecordID(recordID)
	r.ExpertID = id.ExpertID(expertID)
	r.Status = models.Status(status)
	r.IDType = models.IDType(idType)
	r.BackgroundCheckStatus = models.BackgroundCheckStatus(bgStatus)
	r.CriminalRecordDisclosure = models.Disclosure(disclosure)
	r.BusinessLicenseExpiry = datePtr(licenseExpiry)
	r.InsuranceExpiry = datePtr(insuranceExpiry)
	r.SubmittedAt = timePtr(submittedAt)
	r.ReviewedAt = timePtr(reviewedAt)
	r.ApprovedAt = timePtr(approvedAt)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()

	for _, slot := range []struct {
		raw []byte
		dst **models.Document
	}{
		{license, &r.BusinessLicenseDocument},
		{insurance, &r.InsuranceCertificate},
		{front, &r.IDDocumentFront},
		{back, &r.IDDocumentBack},
		{bill, &r.UtilityBill},
	} {
		if len(slot.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(slot.raw, slot.dst); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	if err := unmarshalList(certs, &r.Certifications); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	if err := unmarshalList(refs, &r.ProfessionalReferences); err != nil {
		return nil, fmt.Errorf("decode references: %w", err)
	}
	return &r, nil
}

// JSONB parameters are sent as text; lib/pq would hex-escape a []byte.
func marshalNullable(d *models.Document) (any, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

func unmarshalList[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if len(items) > 0 {
		*dst = items
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func datePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := models.DateOf(nt.Time)
	return &t
}
