package services

import (
	"fmt"
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

// fakeGateway is a scriptable PaymentGateway for coordinator tests.
type fakeGateway struct {
	initFunc   func(reference string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error)
	verifyFunc func(reference string) (*models.GatewayVerification, error)
}

func (g *fakeGateway) Initialize(reference string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error) {
	return g.initFunc(reference, customer, amount, currency)
}

func (g *fakeGateway) Verify(reference string) (*models.GatewayVerification, error) {
	return g.verifyFunc(reference)
}

func (g *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return true
}

type coordinatorFixture struct {
	mock         sqlmock.Sqlmock
	coordinator  *PaymentCoordinator
	gateway      *fakeGateway
	availability *AvailabilityService
	close        func()
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	pgDB := &database.PostgresDB{DB: sqlxDB}

	logger := testLogger()
	bookingRepo := database.NewBookingRepository(pgDB)
	roomRepo := database.NewRoomRepository(pgDB)
	guestRepo := database.NewGuestRepository(pgDB)
	auditRepo := database.NewPaymentAuditRepository(pgDB)

	availability := NewAvailabilityService(logger)
	calculator := NewRateCalculator(config.BillingConfig{Currency: "NGN", TaxRateBasisPts: 1000}, logger)
	bookingService := NewBookingService(bookingRepo, roomRepo, guestRepo, availability, calculator, logger)

	gateway := &fakeGateway{}
	coordinator := NewPaymentCoordinator(
		bookingService, bookingRepo, guestRepo, auditRepo, gateway,
		config.PaymentConfig{VerifyRetries: 1},
		config.BillingConfig{Currency: "NGN", TaxRateBasisPts: 1000},
		logger,
	)

	return &coordinatorFixture{
		mock:         mock,
		coordinator:  coordinator,
		gateway:      gateway,
		availability: availability,
		close:        func() { db.Close() },
	}
}

func stubBookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reference", "guest_id", "room_id",
		"check_in", "check_out", "booking_type", "status",
		"total_amount", "paid_amount", "payment_method",
		"payment_state", "gateway_reference", "payment_attempts",
		"idempotency_key", "cancelled_at", "checked_out_at",
		"created_at", "updated_at",
	})
}

func addStubBooking(rows *sqlmock.Rows, state string, paid int64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		"booking-1", "BK-2026-000001", "guest-1", "room-1",
		now.Add(24*time.Hour), now.Add(96*time.Hour), "reservation", "pending",
		int64(16720000), paid, "online",
		state, "BK-2026-000001", 1,
		nil, nil, nil,
		now, now,
	)
}

func TestVerifyPayment(t *testing.T) {
	t.Run("Settled Attempt Is Idempotent", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "settled", 16720000))
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// No gateway call and no payment update should happen.
		f.gateway.verifyFunc = func(string) (*models.GatewayVerification, error) {
			t.Fatal("gateway must not be called for a settled attempt")
			return nil, nil
		}

		result, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Equal(t, models.AttemptSettled, result.State)
		assert.Zero(t, result.AmountCredited)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Successful Verification Settles Once", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		// verifying state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// attempt amount from the initiated audit
		f.mock.ExpectQuery(`SELECT expected_amount FROM payment_audits`).
			WithArgs("BK-2026-000001").
			WillReturnRows(sqlmock.NewRows([]string{"expected_amount"}).AddRow(int64(16720000)))
		// verified audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// payment credit
		f.mock.ExpectExec(`UPDATE bookings`).
			WithArgs("booking-1", int64(16720000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// settled state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// pending -> confirmed
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "settled", 16720000))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.verifyFunc = func(ref string) (*models.GatewayVerification, error) {
			return &models.GatewayVerification{
				Reference: ref,
				Status:    "success",
				Amount:    16720000,
				Currency:  "NGN",
			}, nil
		}

		result, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Equal(t, money.Amount(16720000), result.AmountCredited)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Partial Deposit Reconciled Against Attempt Amount", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		// verifying state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// the attempt asked for a deposit, not the full balance
		f.mock.ExpectQuery(`SELECT expected_amount FROM payment_audits`).
			WithArgs("BK-2026-000001").
			WillReturnRows(sqlmock.NewRows([]string{"expected_amount"}).AddRow(int64(5000000)))
		// verified audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// deposit credit
		f.mock.ExpectExec(`UPDATE bookings`).
			WithArgs("booking-1", int64(5000000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// settled state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// pending -> confirmed
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "settled", 5000000))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.verifyFunc = func(ref string) (*models.GatewayVerification, error) {
			return &models.GatewayVerification{
				Reference: ref,
				Status:    "success",
				Amount:    5000000,
				Currency:  "NGN",
			}, nil
		}

		result, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Equal(t, money.Amount(5000000), result.AmountCredited)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Failed Verification Keeps Booking", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// failed audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// failed state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.verifyFunc = func(ref string) (*models.GatewayVerification, error) {
			return &models.GatewayVerification{Reference: ref, Status: "failed"}, nil
		}

		_, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		var verr *models.VerificationFailedError
		require.ErrorAs(t, err, &verr)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Amount Mismatch Fails Verification", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// attempt amount from the initiated audit
		f.mock.ExpectQuery(`SELECT expected_amount FROM payment_audits`).
			WithArgs("BK-2026-000001").
			WillReturnRows(sqlmock.NewRows([]string{"expected_amount"}).AddRow(int64(16720000)))
		// mismatch audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// failed audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// failed state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.verifyFunc = func(ref string) (*models.GatewayVerification, error) {
			return &models.GatewayVerification{
				Reference: ref,
				Status:    "success",
				Amount:    100000, // short payment
				Currency:  "NGN",
			}, nil
		}

		_, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		var verr *models.VerificationFailedError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "amount mismatch")

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Unreachable Gateway Leaves Attempt Verifying", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE gateway_reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// error audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.verifyFunc = func(string) (*models.GatewayVerification, error) {
			return nil, &models.GatewayUnreachableError{Err: fmt.Errorf("connection refused")}
		}

		_, err := f.coordinator.VerifyPayment("BK-2026-000001", models.PaymentSourceGuest, RequestMeta{})
		var unreachable *models.GatewayUnreachableError
		require.ErrorAs(t, err, &unreachable)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func onlineBookingRequest(amount money.Amount) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		GuestID:        "guest-1",
		RoomID:         "room-1",
		CheckIn:        "2026-06-01",
		CheckOut:       "2026-06-04",
		BookingType:    models.BookingTypeReservation,
		PaymentMethod:  models.PaymentMethodOnline,
		AmountToPayNow: amount,
	}
}

func TestCreateBookingIntent(t *testing.T) {
	t.Run("Zero Amount Online Intent Skips Gateway", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		now := time.Now()
		expectGuestAndRoom(f.mock)
		f.mock.ExpectQuery(`SELECT nextval`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(7)))
		f.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		f.gateway.initFunc = func(string, models.GatewayCustomer, money.Amount, string) (*models.GatewayInitResult, error) {
			t.Fatal("gateway must not be called when nothing is due now")
			return nil, nil
		}

		result, err := f.coordinator.CreateBookingIntent(onlineBookingRequest(0), RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.AttemptSettled, result.State)
		assert.Empty(t, result.AuthorizationURL)
		assert.Equal(t, models.PaymentStateNone, result.Booking.PaymentState)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Partial Deposit Charges The Deposit", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		now := time.Now()
		expectGuestAndRoom(f.mock)
		f.mock.ExpectQuery(`SELECT nextval`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(8)))
		f.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		// guest lookup for the gateway customer
		f.mock.ExpectQuery(`SELECT (.+) FROM guests`).
			WithArgs("guest-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "full_name", "email", "phone", "address", "created_at", "updated_at",
			}).AddRow("guest-1", "Ada Obi", "ada@example.com", nil, nil, now, now))
		// initiated audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// awaiting_gateway state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.initFunc = func(ref string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error) {
			// The gateway collects the deposit, never the full balance.
			assert.Equal(t, money.FromMajor(50000), amount)
			return &models.GatewayInitResult{
				AuthorizationURL: "https://checkout.example/" + ref,
				Reference:        ref,
			}, nil
		}

		result, err := f.coordinator.CreateBookingIntent(onlineBookingRequest(money.FromMajor(50000)), RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.AttemptAwaitingGateway, result.State)
		assert.NotEmpty(t, result.AuthorizationURL)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestInitiatePayment(t *testing.T) {
	t.Run("Live Attempt Is Replayed", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))

		f.gateway.initFunc = func(string, models.GatewayCustomer, money.Amount, string) (*models.GatewayInitResult, error) {
			t.Fatal("gateway must not be called for a live attempt")
			return nil, nil
		}

		result, err := f.coordinator.InitiatePayment("BK-2026-000001", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.AttemptAwaitingGateway, result.State)
		assert.Equal(t, "BK-2026-000001", result.GatewayReference)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Opens Gateway For Untried Booking", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "none", 0))
		// guest lookup
		f.mock.ExpectQuery(`SELECT (.+) FROM guests`).
			WithArgs("guest-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "full_name", "email", "phone", "address", "created_at", "updated_at",
			}).AddRow("guest-1", "Ada Obi", "ada@example.com", nil, nil, time.Now(), time.Now()))
		// initiated audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// awaiting_gateway state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		f.gateway.initFunc = func(ref string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error) {
			assert.Equal(t, "BK-2026-000001", ref)
			assert.Equal(t, money.Amount(16720000), amount)
			return &models.GatewayInitResult{
				AuthorizationURL: "https://checkout.example/" + ref,
				Reference:        ref,
			}, nil
		}

		result, err := f.coordinator.InitiatePayment("BK-2026-000001", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.AttemptAwaitingGateway, result.State)
		assert.NotEmpty(t, result.AuthorizationURL)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Nothing Owed", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "settled", 16720000))

		_, err := f.coordinator.InitiatePayment("BK-2026-000001", RequestMeta{})
		assert.Error(t, err)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestAbandonPayment(t *testing.T) {
	t.Run("Abandoned Attempt Keeps Booking", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		now := time.Now()
		interval := models.StayInterval{
			RoomID:   "room-1",
			CheckIn:  now.Add(24 * time.Hour),
			CheckOut: now.Add(96 * time.Hour),
		}
		require.NoError(t, f.availability.Reserve("BK-2026-000001", interval))

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		booking, err := f.coordinator.AbandonPayment("BK-2026-000001", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStateAbandoned, booking.PaymentState)
		assert.Equal(t, models.BookingStatusPending, booking.Status)

		// The room interval stays held; nobody else can take the stay.
		err = f.availability.Reserve("BK-2026-000002", interval)
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("No Attempt To Abandon", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "none", 0))

		_, err := f.coordinator.AbandonPayment("BK-2026-000001", RequestMeta{})
		assert.Error(t, err)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestRetryPayment(t *testing.T) {
	t.Run("Fresh Gateway Reference Same Booking", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "abandoned", 0))
		// retry audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// guest lookup
		f.mock.ExpectQuery(`SELECT (.+) FROM guests`).
			WithArgs("guest-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "full_name", "email", "phone", "address", "created_at", "updated_at",
			}).AddRow("guest-1", "Ada Obi", "ada@example.com", nil, nil, time.Now(), time.Now()))
		// initiated audit
		f.mock.ExpectExec(`INSERT INTO payment_audits`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// awaiting_gateway state
		f.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		var gotRef string
		f.gateway.initFunc = func(ref string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error) {
			gotRef = ref
			assert.Equal(t, money.Amount(16720000), amount)
			assert.Equal(t, "Ada Obi", customer.Name)
			return &models.GatewayInitResult{
				AuthorizationURL: "https://checkout.example/" + ref,
				Reference:        ref,
			}, nil
		}

		result, err := f.coordinator.RetryPayment("BK-2026-000001", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, "BK-2026-000001-R1", gotRef)
		assert.Equal(t, "BK-2026-000001", result.Booking.Reference)
		assert.Equal(t, models.AttemptAwaitingGateway, result.State)
		assert.Equal(t, 2, result.Booking.PaymentAttempts)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Retry Not Allowed Mid Handshake", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		defer f.close()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE reference`).
			WithArgs("BK-2026-000001").
			WillReturnRows(addStubBooking(stubBookingRows(), "awaiting_gateway", 0))

		_, err := f.coordinator.RetryPayment("BK-2026-000001", RequestMeta{})
		assert.Error(t, err)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}
