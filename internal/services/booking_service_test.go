package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

type bookingFixture struct {
	mock         sqlmock.Sqlmock
	service      *BookingService
	availability *AvailabilityService
	close        func()
}

func newBookingFixture(t *testing.T) *bookingFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	pgDB := &database.PostgresDB{DB: sqlxDB}

	logger := testLogger()
	bookingRepo := database.NewBookingRepository(pgDB)
	roomRepo := database.NewRoomRepository(pgDB)
	guestRepo := database.NewGuestRepository(pgDB)

	availability := NewAvailabilityService(logger)
	calculator := NewRateCalculator(config.BillingConfig{Currency: "NGN", TaxRateBasisPts: 1000}, logger)
	service := NewBookingService(bookingRepo, roomRepo, guestRepo, availability, calculator, logger)

	return &bookingFixture{
		mock:         mock,
		service:      service,
		availability: availability,
		close:        func() { db.Close() },
	}
}

func expectGuestAndRoom(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("guest-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT (.+) FROM rooms WHERE id`).
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_number", "room_type", "nightly_rate", "status",
			"floor", "max_occupancy", "created_at", "updated_at",
		}).AddRow("room-1", "204", "standard", int64(4500000), "available", 2, 2, now, now))
}

func reservationRequest() *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		GuestID:       "guest-1",
		RoomID:        "room-1",
		CheckIn:       "2026-06-01",
		CheckOut:      "2026-06-04",
		BookingType:   models.BookingTypeReservation,
		PaymentMethod: models.PaymentMethodCash,
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("Reservation With Deposit", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		now := time.Now()
		expectGuestAndRoom(f.mock)
		f.mock.ExpectQuery(`SELECT nextval`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(1)))
		f.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		// deposit
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := reservationRequest()
		req.AmountToPayNow = money.FromMajor(100000)

		booking, err := f.service.CreateBooking(req)
		require.NoError(t, err)
		assert.Equal(t, "BK-2026-000001", booking.Reference)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		// 3 nights at 45,000 plus 10% tax
		assert.Equal(t, money.FromMajor(148500), booking.TotalAmount)
		assert.Equal(t, money.FromMajor(100000), booking.PaidAmount)

		// The interval is held by the index.
		assert.Len(t, f.availability.Holds("room-1"), 1)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Overlapping Booking Rejected Before Insert", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		require.NoError(t, f.availability.Reserve("BK-2026-000009", models.StayInterval{
			RoomID:   "room-1",
			CheckIn:  time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		}))

		expectGuestAndRoom(f.mock)
		f.mock.ExpectQuery(`SELECT nextval`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(2)))

		_, err := f.service.CreateBooking(reservationRequest())
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)

		// No INSERT was expected or executed.
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Failed Insert Releases The Hold", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		expectGuestAndRoom(f.mock)
		f.mock.ExpectQuery(`SELECT nextval`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(3)))
		f.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(assert.AnError)

		_, err := f.service.CreateBooking(reservationRequest())
		require.Error(t, err)
		assert.Empty(t, f.availability.Holds("room-1"))

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Idempotency Key Returns Existing Booking", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		now := time.Now()
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE idempotency_key`).
			WithArgs("key-1").
			WillReturnRows(stubBookingRows().AddRow(
				"booking-1", "BK-2026-000001", "guest-1", "room-1",
				now, now.Add(72*time.Hour), "reservation", "confirmed",
				int64(14850000), int64(10000000), "cash",
				"none", nil, 0,
				"key-1", nil, nil,
				now, now,
			))

		key := "key-1"
		req := reservationRequest()
		req.IdempotencyKey = &key

		booking, err := f.service.CreateBooking(req)
		require.NoError(t, err)
		assert.Equal(t, "BK-2026-000001", booking.Reference)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Deposit Above Total Rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		expectGuestAndRoom(f.mock)

		req := reservationRequest()
		req.AmountToPayNow = money.FromMajor(200000)

		_, err := f.service.CreateBooking(req)
		var overpay *models.OverpaymentError
		require.ErrorAs(t, err, &overpay)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("Cancellation Releases The Hold", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		now := time.Now()
		require.NoError(t, f.availability.Reserve("BK-2026-000001", models.StayInterval{
			RoomID:   "room-1",
			CheckIn:  now.Add(24 * time.Hour),
			CheckOut: now.Add(96 * time.Hour),
		}))

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(stubBookingRows().AddRow(
				"booking-1", "BK-2026-000001", "guest-1", "room-1",
				now.Add(24*time.Hour), now.Add(96*time.Hour), "reservation", "confirmed",
				int64(14850000), int64(0), "cash",
				"none", nil, 0,
				nil, nil, nil,
				now, now,
			))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// room status cache refresh
		f.mock.ExpectExec(`UPDATE rooms`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		booking, err := f.service.Cancel("BK-2026-000001")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.Status)
		assert.Empty(t, f.availability.Holds("room-1"))

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Cancellation Leaves Room Reserved For The Next Stay", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		now := time.Now()
		require.NoError(t, f.availability.Reserve("BK-2026-000001", models.StayInterval{
			RoomID:   "room-1",
			CheckIn:  now.Add(24 * time.Hour),
			CheckOut: now.Add(96 * time.Hour),
		}))
		// A second booking occupies the room today.
		require.NoError(t, f.availability.Reserve("BK-2026-000002", models.StayInterval{
			RoomID:   "room-1",
			CheckIn:  now.Add(-24 * time.Hour),
			CheckOut: now.Add(23 * time.Hour),
		}))

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(stubBookingRows().AddRow(
				"booking-1", "BK-2026-000001", "guest-1", "room-1",
				now.Add(24*time.Hour), now.Add(96*time.Hour), "reservation", "confirmed",
				int64(14850000), int64(0), "cash",
				"none", nil, 0,
				nil, nil, nil,
				now, now,
			))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// The cache must reflect the surviving hold, not the cancelled one.
		f.mock.ExpectExec(`UPDATE rooms`).
			WithArgs("room-1", "reserved").
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := f.service.Cancel("BK-2026-000001")
		require.NoError(t, err)
		assert.Len(t, f.availability.Holds("room-1"), 1)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Checked In Cannot Be Cancelled", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		now := time.Now()
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(stubBookingRows().AddRow(
				"booking-1", "BK-2026-000001", "guest-1", "room-1",
				now, now.Add(72*time.Hour), "check_in", "checked_in",
				int64(14850000), int64(14850000), "cash",
				"none", nil, 0,
				nil, nil, nil,
				now, now,
			))

		_, err := f.service.Cancel("BK-2026-000001")
		var invalid *models.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, models.BookingStatusCheckedIn, invalid.From)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("Overpayment Rejected Whole", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		booking := &models.Booking{
			ID:          "booking-1",
			Reference:   "BK-2026-000001",
			TotalAmount: money.FromMajor(148500),
			PaidAmount:  money.FromMajor(100000),
		}

		err := f.service.RecordPayment(booking, money.FromMajor(50000))
		var overpay *models.OverpaymentError
		require.ErrorAs(t, err, &overpay)
		assert.Equal(t, money.FromMajor(48500), overpay.Remaining)
		// Nothing was applied.
		assert.Equal(t, money.FromMajor(100000), booking.PaidAmount)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Racing Credit Rejected By The Ledger", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		// The in-memory copy still thinks the balance is open, but another
		// credit landed first; the clamped UPDATE matches no row.
		f.mock.ExpectExec(`UPDATE bookings`).
			WithArgs("booking-1", int64(14850000)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		now := time.Now()
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs("booking-1").
			WillReturnRows(stubBookingRows().AddRow(
				"booking-1", "BK-2026-000001", "guest-1", "room-1",
				now, now.Add(72*time.Hour), "reservation", "confirmed",
				int64(14850000), int64(14850000), "online",
				"settled", "BK-2026-000001", 1,
				nil, nil, nil,
				now, now,
			))

		booking := &models.Booking{
			ID:          "booking-1",
			Reference:   "BK-2026-000001",
			TotalAmount: money.FromMajor(148500),
			PaidAmount:  0,
		}

		err := f.service.RecordPayment(booking, money.FromMajor(148500))
		var overpay *models.OverpaymentError
		require.ErrorAs(t, err, &overpay)
		assert.Zero(t, overpay.Remaining)
		// The in-memory copy now reflects what actually landed.
		assert.Equal(t, money.FromMajor(148500), booking.PaidAmount)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Exact Balance Accepted", func(t *testing.T) {
		f := newBookingFixture(t)
		defer f.close()

		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		booking := &models.Booking{
			ID:          "booking-1",
			Reference:   "BK-2026-000001",
			TotalAmount: money.FromMajor(148500),
			PaidAmount:  money.FromMajor(100000),
		}

		err := f.service.RecordPayment(booking, money.FromMajor(48500))
		require.NoError(t, err)
		assert.Zero(t, booking.Balance())

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}
