package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

type RoommateRepository interface {
	Create(ctx context.Context, r *models.RoommateProfile) error
	GetByID(ctx context.Context, id string) (*models.RoommateProfile, error)
	List(ctx context.Context) ([]*models.RoommateProfile, error)
	ListByStatus(ctx context.Context, status models.ModerationStatus) ([]*models.RoommateProfile, error)

	UpdateIfVersion(ctx context.Context, r *models.RoommateProfile, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.RoommateProfile) error) error
	IncrementViews(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

/* ------------------------------------------------------------------
   In-memory implementation
------------------------------------------------------------------ */

type memoryRoommateRepo struct {
	store *memoryStore[*models.RoommateProfile]
}

func NewMemoryRoommateRepository() RoommateRepository {
	return &memoryRoommateRepo{store: newMemoryStore((*models.RoommateProfile).Clone)}
}

func (m *memoryRoommateRepo) Create(_ context.Context, r *models.RoommateProfile) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return m.store.create(r)
}

func (m *memoryRoommateRepo) GetByID(ctx context.Context, id string) (*models.RoommateProfile, error) {
	return m.store.get(ctx, id)
}

func (m *memoryRoommateRepo) List(_ context.Context) ([]*models.RoommateProfile, error) {
	return m.store.list(nil), nil
}

func (m *memoryRoommateRepo) ListByStatus(_ context.Context, status models.ModerationStatus) ([]*models.RoommateProfile, error) {
	return m.store.list(func(r *models.RoommateProfile) bool { return r.Status == status }), nil
}

func (m *memoryRoommateRepo) UpdateIfVersion(ctx context.Context, r *models.RoommateProfile, expected int64) (pgconn.CommandTag, error) {
	return m.store.updateIfVersion(ctx, r, expected)
}

func (m *memoryRoommateRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.RoommateProfile) error) error {
	return WithRetry(ctx, 3, id, m.store.get, m.UpdateIfVersion, mutate)
}

func (m *memoryRoommateRepo) IncrementViews(_ context.Context, id string) (int, error) {
	r, err := m.store.mutate(id, func(r *models.RoommateProfile) { r.Views++ })
	if err != nil {
		return 0, err
	}
	return r.Views, nil
}

func (m *memoryRoommateRepo) Delete(_ context.Context, id string) error {
	return m.store.delete(id)
}

/* ------------------------------------------------------------------
   Postgres implementation
------------------------------------------------------------------ */

type roommateRepo struct {
	*BaseVersionedRepo[*models.RoommateProfile]
	db    DB
	crypt fieldCipher
}

func NewRoommateRepository(db DB, encryptionKey []byte) RoommateRepository {
	r := &roommateRepo{db: db, crypt: fieldCipher{key: encryptionKey}}
	selectStmt := baseSelectRoommate() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanRoommate)
	return r
}

func (r *roommateRepo) Create(ctx context.Context, p *models.RoommateProfile) error {
	sealed, err := r.crypt.sealAll(p.CompleteAddress, p.ContactPhone, p.ContactEmail)
	if err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO roommates (
            id, owner_name, age, rent, city, locality, state,
            complete_address, partial_address, contact_phone, contact_email,
            description, preferences, gender, images, views, owner_id,
            verification_document_url, has_property, status,
            sort_key, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
            (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM roommates), NOW(), NOW(), 1
        )
        RETURNING created_at
    `,
		p.ID, p.OwnerName, p.Age, p.Rent, p.City, p.Locality, p.State,
		sealed[0], p.PartialAddress, sealed[1], sealed[2],
		p.Description, p.Preferences, p.Gender, p.Images, p.Views, p.OwnerID,
		p.VerificationDocumentURL, p.HasProperty, p.Status,
	)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return err
	}
	p.RowVersion = 1
	return nil
}

func (r *roommateRepo) GetByID(ctx context.Context, id string) (*models.RoommateProfile, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *roommateRepo) List(ctx context.Context) ([]*models.RoommateProfile, error) {
	return r.query(ctx, baseSelectRoommate()+" ORDER BY sort_key DESC")
}

func (r *roommateRepo) ListByStatus(ctx context.Context, status models.ModerationStatus) ([]*models.RoommateProfile, error) {
	return r.query(ctx, baseSelectRoommate()+" WHERE status=$1 ORDER BY sort_key DESC", status)
}

func (r *roommateRepo) UpdateIfVersion(ctx context.Context, p *models.RoommateProfile, expected int64) (pgconn.CommandTag, error) {
	sealed, err := r.crypt.sealAll(p.CompleteAddress, p.ContactPhone, p.ContactEmail)
	if err != nil {
		return nil, err
	}
	return r.db.Exec(ctx, `
        UPDATE roommates SET
            owner_name=$1, age=$2, rent=$3, city=$4, locality=$5, state=$6,
            complete_address=$7, partial_address=$8, contact_phone=$9, contact_email=$10,
            description=$11, preferences=$12, gender=$13, images=$14,
            verification_document_url=$15, has_property=$16, status=$17,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$18 AND row_version=$19
    `,
		p.OwnerName, p.Age, p.Rent, p.City, p.Locality, p.State,
		sealed[0], p.PartialAddress, sealed[1], sealed[2],
		p.Description, p.Preferences, p.Gender, p.Images,
		p.VerificationDocumentURL, p.HasProperty, p.Status,
		p.ID, expected,
	)
}

func (r *roommateRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.RoommateProfile) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *roommateRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.db.QueryRow(ctx,
		`UPDATE roommates SET views = views + 1 WHERE id=$1 RETURNING views`, id,
	).Scan(&views)
	return views, err
}

func (r *roommateRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roommates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roommateRepo) query(ctx context.Context, sql string, args ...any) ([]*models.RoommateProfile, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RoommateProfile
	for rows.Next() {
		p, err := r.scanRoommate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func baseSelectRoommate() string {
	return `
        SELECT
            id, owner_name, age, rent, city, locality, state,
            complete_address, partial_address, contact_phone, contact_email,
            description, preferences, gender, images, views, owner_id,
            verification_document_url, has_property, status,
            created_at, row_version
        FROM roommates
    `
}

func (r *roommateRepo) scanRoommate(row pgx.Row) (*models.RoommateProfile, error) {
	var p models.RoommateProfile
	err := row.Scan(
		&p.ID, &p.OwnerName, &p.Age, &p.Rent, &p.City, &p.Locality, &p.State,
		&p.CompleteAddress, &p.PartialAddress, &p.ContactPhone, &p.ContactEmail,
		&p.Description, &p.Preferences, &p.Gender, &p.Images, &p.Views, &p.OwnerID,
		&p.VerificationDocumentURL, &p.HasProperty, &p.Status,
		&p.CreatedAt, &p.RowVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.PropertyType = models.PropertyTypeRoommate
	if err := r.crypt.openAll(&p.CompleteAddress, &p.ContactPhone, &p.ContactEmail); err != nil {
		return nil, err
	}
	return &p, nil
}
