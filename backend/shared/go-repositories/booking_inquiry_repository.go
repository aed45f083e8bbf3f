package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

type BookingInquiryRepository interface {
	Create(ctx context.Context, inq *models.BookingInquiry) error
	CountByListing(ctx context.Context, listingID string) (int, error)
	Count(ctx context.Context) (int, error)
}

type bookingInquiryRepo struct {
	db DB
}

func NewBookingInquiryRepository(db DB) BookingInquiryRepository {
	return &bookingInquiryRepo{db: db}
}

func (r *bookingInquiryRepo) Create(ctx context.Context, inq *models.BookingInquiry) error {
	return r.db.QueryRow(ctx, `
        INSERT INTO booking_inquiries (id, listing_id, bed_id, name, start_date, end_date, visitor_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING created_at
    `, inq.ID, inq.ListingID, inq.BedID, inq.Name, inq.StartDate, inq.EndDate, inq.VisitorID,
	).Scan(&inq.CreatedAt)
}

func (r *bookingInquiryRepo) CountByListing(ctx context.Context, listingID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM booking_inquiries WHERE listing_id=$1`, listingID).Scan(&n)
	return n, err
}

func (r *bookingInquiryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM booking_inquiries`).Scan(&n)
	return n, err
}

type memoryBookingInquiryRepo struct {
	mu        sync.Mutex
	inquiries []models.BookingInquiry
}

func NewMemoryBookingInquiryRepository() BookingInquiryRepository {
	return &memoryBookingInquiryRepo{}
}

func (r *memoryBookingInquiryRepo) Create(_ context.Context, inq *models.BookingInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = time.Now().UTC()
	}
	r.inquiries = append(r.inquiries, *inq)
	return nil
}

func (r *memoryBookingInquiryRepo) CountByListing(_ context.Context, listingID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, inq := range r.inquiries {
		if inq.ListingID == listingID {
			n++
		}
	}
	return n, nil
}

func (r *memoryBookingInquiryRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inquiries), nil
}
