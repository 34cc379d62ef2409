package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

const bookingColumns = `id, requester_contact, requester_name, pickup_label, pickup_lat, pickup_lng,
	dropoff_label, dropoff_lat, dropoff_lng, start_at, end_at, passengers, waiting_minutes,
	wait_and_return, distance_km, fare_amount, currency, estimated_pickup_minutes, status,
	driver_response, created_at, updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	pickupLat, pickupLng := nullCoords(b.Pickup.Coords)
	dropoffLat, dropoffLng := nullCoords(b.Dropoff.Coords)

	_, err := r.q.ExecContext(ctx, query,
		b.ID,
		b.RequesterContact,
		nullString(b.RequesterName),
		b.Pickup.Label,
		pickupLat,
		pickupLng,
		b.Dropoff.Label,
		dropoffLat,
		dropoffLng,
		b.Start,
		b.End,
		b.Passengers,
		b.WaitingMinutes,
		b.WaitAndReturn,
		b.DistanceKm,
		b.FareAmount,
		b.Currency,
		b.EstimatedPickupMins,
		b.Status,
		nullString(b.DriverResponse),
		b.CreatedAt,
		b.UpdatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByStatus retrieves bookings ordered by start time. An empty status lists all.
func (r *BookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY start_at ASC`)
	}
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY start_at ASC`, status)
}

// ListByContact retrieves the bookings of one requester, newest first.
func (r *BookingRepository) ListByContact(ctx context.Context, contact string) ([]*domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE requester_contact = $1 ORDER BY created_at DESC`, contact)
}

// UpdateStatus sets the status and driver response of a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, driverResponse string, at time.Time) error {
	query := `UPDATE bookings SET status = $1, driver_response = $2, updated_at = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, status, nullString(driverResponse), at, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var requesterName, driverResponse sql.NullString
	var pickupLat, pickupLng, dropoffLat, dropoffLng sql.NullFloat64

	err := row.Scan(
		&b.ID,
		&b.RequesterContact,
		&requesterName,
		&b.Pickup.Label,
		&pickupLat,
		&pickupLng,
		&b.Dropoff.Label,
		&dropoffLat,
		&dropoffLng,
		&b.Start,
		&b.End,
		&b.Passengers,
		&b.WaitingMinutes,
		&b.WaitAndReturn,
		&b.DistanceKm,
		&b.FareAmount,
		&b.Currency,
		&b.EstimatedPickupMins,
		&b.Status,
		&driverResponse,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.RequesterName = requesterName.String
	b.DriverResponse = driverResponse.String
	if pickupLat.Valid && pickupLng.Valid {
		b.Pickup.Coords = &domain.LatLng{Lat: pickupLat.Float64, Lng: pickupLng.Float64}
	}
	if dropoffLat.Valid && dropoffLng.Valid {
		b.Dropoff.Coords = &domain.LatLng{Lat: dropoffLat.Float64, Lng: dropoffLng.Float64}
	}

	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullCoords(p *domain.LatLng) (sql.NullFloat64, sql.NullFloat64) {
	if p == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}
