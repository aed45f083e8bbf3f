package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// ListingRepository stores PG and Rental listings. List methods return the
// collection order: newest submission first, then the seeded catalogue.
type ListingRepository interface {
	Create(ctx context.Context, l *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context) ([]*models.Listing, error)
	ListByStatus(ctx context.Context, status models.ModerationStatus) ([]*models.Listing, error)

	UpdateIfVersion(ctx context.Context, l *models.Listing, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Listing) error) error
	IncrementViews(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

/* ------------------------------------------------------------------
   In-memory implementation
------------------------------------------------------------------ */

type memoryListingRepo struct {
	store *memoryStore[*models.Listing]
}

func NewMemoryListingRepository() ListingRepository {
	return &memoryListingRepo{store: newMemoryStore((*models.Listing).Clone)}
}

func (r *memoryListingRepo) Create(_ context.Context, l *models.Listing) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return r.store.create(l)
}

func (r *memoryListingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	return r.store.get(ctx, id)
}

func (r *memoryListingRepo) List(_ context.Context) ([]*models.Listing, error) {
	return r.store.list(nil), nil
}

func (r *memoryListingRepo) ListByStatus(_ context.Context, status models.ModerationStatus) ([]*models.Listing, error) {
	return r.store.list(func(l *models.Listing) bool { return l.Status == status }), nil
}

func (r *memoryListingRepo) UpdateIfVersion(ctx context.Context, l *models.Listing, expected int64) (pgconn.CommandTag, error) {
	return r.store.updateIfVersion(ctx, l, expected)
}

func (r *memoryListingRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Listing) error) error {
	return WithRetry(ctx, 3, id, r.store.get, r.UpdateIfVersion, mutate)
}

func (r *memoryListingRepo) IncrementViews(_ context.Context, id string) (int, error) {
	l, err := r.store.mutate(id, func(l *models.Listing) { l.Views++ })
	if err != nil {
		return 0, err
	}
	return l.Views, nil
}

func (r *memoryListingRepo) Delete(_ context.Context, id string) error {
	return r.store.delete(id)
}

/* ------------------------------------------------------------------
   Postgres implementation
------------------------------------------------------------------ */

type listingRepo struct {
	*BaseVersionedRepo[*models.Listing]
	db    DB
	crypt fieldCipher
}

// NewListingRepository returns the postgres-backed repository. When
// encryptionKey is non-nil, owner contact fields are sealed at rest.
func NewListingRepository(db DB, encryptionKey []byte) ListingRepository {
	r := &listingRepo{db: db, crypt: fieldCipher{key: encryptionKey}}
	selectStmt := baseSelectListing() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanListing)
	return r
}

func (r *listingRepo) Create(ctx context.Context, l *models.Listing) error {
	beds, err := json.Marshal(l.Beds)
	if err != nil {
		return err
	}
	sealed, err := r.crypt.sealAll(l.CompleteAddress, l.ContactPhone, l.ContactEmail)
	if err != nil {
		return err
	}

	// sort_key grows with each insert; listing order is sort_key DESC.
	row := r.db.QueryRow(ctx, `
        INSERT INTO listings (
            id, property_type, title, rent, area, city, locality, state,
            complete_address, partial_address, owner_name, contact_phone, contact_email,
            description, furnished_status, amenities, size, images, video_url, views,
            owner_id, broker_status, verification_document_url, beds, status,
            sort_key, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
            $21,$22,$23,$24,$25,
            (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM listings), NOW(), NOW(), 1
        )
        RETURNING created_at
    `,
		l.ID, l.PropertyType, l.Title, l.Rent, l.Area, l.City, l.Locality, l.State,
		sealed[0], l.PartialAddress, l.OwnerName, sealed[1], sealed[2],
		l.Description, l.FurnishedStatus, l.Amenities, l.Size, l.Images, l.VideoURL, l.Views,
		l.OwnerID, l.BrokerStatus, l.VerificationDocumentURL, beds, l.Status,
	)
	if err := row.Scan(&l.CreatedAt); err != nil {
		return err
	}
	l.RowVersion = 1
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *listingRepo) List(ctx context.Context) ([]*models.Listing, error) {
	return r.query(ctx, baseSelectListing()+" ORDER BY sort_key DESC")
}

func (r *listingRepo) ListByStatus(ctx context.Context, status models.ModerationStatus) ([]*models.Listing, error) {
	return r.query(ctx, baseSelectListing()+" WHERE status=$1 ORDER BY sort_key DESC", status)
}

func (r *listingRepo) UpdateIfVersion(ctx context.Context, l *models.Listing, expected int64) (pgconn.CommandTag, error) {
	beds, err := json.Marshal(l.Beds)
	if err != nil {
		return nil, err
	}
	sealed, err := r.crypt.sealAll(l.CompleteAddress, l.ContactPhone, l.ContactEmail)
	if err != nil {
		return nil, err
	}
	return r.db.Exec(ctx, `
        UPDATE listings SET
            title=$1, rent=$2, area=$3, city=$4, locality=$5, state=$6,
            complete_address=$7, partial_address=$8, owner_name=$9,
            contact_phone=$10, contact_email=$11, description=$12,
            furnished_status=$13, amenities=$14, size=$15, images=$16, video_url=$17,
            broker_status=$18, verification_document_url=$19, beds=$20, status=$21,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$22 AND row_version=$23
    `,
		l.Title, l.Rent, l.Area, l.City, l.Locality, l.State,
		sealed[0], l.PartialAddress, l.OwnerName,
		sealed[1], sealed[2], l.Description,
		l.FurnishedStatus, l.Amenities, l.Size, l.Images, l.VideoURL,
		l.BrokerStatus, l.VerificationDocumentURL, beds, l.Status,
		l.ID, expected,
	)
}

func (r *listingRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Listing) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id, mutate, r.UpdateIfVersion)
}

// IncrementViews is a single atomic UPDATE; view counts do not bump row_version.
func (r *listingRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.db.QueryRow(ctx,
		`UPDATE listings SET views = views + 1 WHERE id=$1 RETURNING views`, id,
	).Scan(&views)
	return views, err
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *listingRepo) query(ctx context.Context, sql string, args ...any) ([]*models.Listing, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func baseSelectListing() string {
	return `
        SELECT
            id, property_type, title, rent, area, city, locality, state,
            complete_address, partial_address, owner_name, contact_phone, contact_email,
            description, furnished_status, amenities, size, images, video_url, views,
            owner_id, broker_status, verification_document_url, beds, status,
            created_at, row_version
        FROM listings
    `
}

func (r *listingRepo) scanListing(row pgx.Row) (*models.Listing, error) {
	var (
		l    models.Listing
		beds pgtype.JSONB
	)
	err := row.Scan(
		&l.ID, &l.PropertyType, &l.Title, &l.Rent, &l.Area, &l.City, &l.Locality, &l.State,
		&l.CompleteAddress, &l.PartialAddress, &l.OwnerName, &l.ContactPhone, &l.ContactEmail,
		&l.Description, &l.FurnishedStatus, &l.Amenities, &l.Size, &l.Images, &l.VideoURL, &l.Views,
		&l.OwnerID, &l.BrokerStatus, &l.VerificationDocumentURL, &beds, &l.Status,
		&l.CreatedAt, &l.RowVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if beds.Status == pgtype.Present {
		if err := beds.AssignTo(&l.Beds); err != nil {
			return nil, err
		}
	}
	if err := r.crypt.openAll(&l.CompleteAddress, &l.ContactPhone, &l.ContactEmail); err != nil {
		return nil, err
	}
	return &l, nil
}
