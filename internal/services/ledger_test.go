package services

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"sync"
	"testing"
	"time"
)

type recordingStore struct {
	mu      sync.Mutex
	fail    error
	commits int
	last    *domain.Trip
}

func (s *recordingStore) CommitBooking(ctx context.Context, trip *domain.Trip, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.commits++
	s.last = trip.Clone()
	return nil
}

func newTestLedger(store *recordingStore) *Ledger {
	var l *Ledger
	if store == nil {
		l = NewLedger(nil)
	} else {
		l = NewLedger(store)
	}
	l.now = func() time.Time { return day0 }
	return l
}

// checkConservation asserts available + confirmed weight == total capacity.
func checkConservation(t *testing.T, l *Ledger, tripID string) {
	t.Helper()
	trip, err := l.Trip(tripID)
	if err != nil {
		t.Fatalf("trip: %v", err)
	}
	bookings, err := l.Bookings(tripID)
	if err != nil {
		t.Fatalf("bookings: %v", err)
	}
	confirmed := 0.0
	for _, b := range bookings {
		if b.Active() {
			confirmed += b.Weight
		}
	}
	if !approx(trip.AvailableWeight()+confirmed, trip.TotalCapacity.Weight) {
		t.Fatalf("available %v + booked %v != total %v", trip.AvailableWeight(), confirmed, trip.TotalCapacity.Weight)
	}
}

func TestLedgerBookAndCancel(t *testing.T) {
	store := &recordingStore{}
	l := newTestLedger(store)
	l.Track(testTrip("t1", "c1", 100), nil)
	ctx := context.Background()

	b, err := l.BookSpace(ctx, "t1", "s1", 30, 250)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Status != domain.BookingConfirmed || b.Weight != 30 || b.Price != 250 {
		t.Fatalf("booking = %+v", b)
	}
	checkConservation(t, l, "t1")

	trip, _ := l.Trip("t1")
	if trip.AvailableWeight() != 70 || !trip.HasShipment("s1") {
		t.Fatalf("trip after booking = %+v", trip)
	}

	cancelled, err := l.CancelBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.BookingCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancelled booking = %+v", cancelled)
	}
	checkConservation(t, l, "t1")

	trip, _ = l.Trip("t1")
	if trip.AvailableWeight() != 100 || trip.HasShipment("s1") {
		t.Fatalf("trip after cancel = %+v", trip)
	}
	if store.commits != 2 {
		t.Fatalf("commits = %d, want 2", store.commits)
	}
}

func TestLedgerCancelIsIdempotent(t *testing.T) {
	l := newTestLedger(nil)
	l.Track(testTrip("t1", "c1", 100), nil)
	ctx := context.Background()

	a, _ := l.BookSpace(ctx, "t1", "s1", 40, 0)
	if _, err := l.BookSpace(ctx, "t1", "s2", 20, 0); err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := l.CancelBooking(ctx, a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := l.CancelBooking(ctx, a.ID); !errors.Is(err, domain.ErrBookingCancelled) {
		t.Fatalf("second cancel err = %v, want ErrBookingCancelled", err)
	}

	trip, _ := l.Trip("t1")
	if trip.AvailableWeight() != 80 {
		t.Fatalf("available = %v, want 80 (weight restored once)", trip.AvailableWeight())
	}
	checkConservation(t, l, "t1")

	if _, err := l.CancelBooking(ctx, "missing"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("unknown booking err = %v, want ErrBookingNotFound", err)
	}
}

func TestLedgerBookSpaceErrors(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	full := testTrip("small", "c1", 50)
	full.MaxShipments = 2
	l.Track(full, nil)

	cancelled := testTrip("gone", "c1", 50)
	cancelled.Status = domain.TripCancelled
	l.Track(cancelled, nil)

	if _, err := l.BookSpace(ctx, "small", "s1", 20, 0); err != nil {
		t.Fatalf("book: %v", err)
	}

	cases := []struct {
		name   string
		trip   string
		ship   string
		weight float64
		want   error
	}{
		{"unknown trip", "nope", "s9", 1, domain.ErrNotFound},
		{"inactive trip", "gone", "s9", 1, domain.ErrTripNotActive},
		{"zero weight", "small", "s9", 0, domain.ErrValidation},
		{"duplicate shipment", "small", "s1", 1, domain.ErrAlreadyBooked},
		{"over capacity", "small", "s2", 31, domain.ErrCapacityExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.BookSpace(ctx, tc.trip, tc.ship, tc.weight, 0); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := l.BookSpace(ctx, "small", "s2", 30, 0); err != nil {
		t.Fatalf("exact fit should book: %v", err)
	}
	if _, err := l.BookSpace(ctx, "small", "s3", 0.5, 0); !errors.Is(err, domain.ErrMaxShipmentsReached) {
		t.Fatalf("err = %v, want ErrMaxShipmentsReached", err)
	}
	checkConservation(t, l, "small")
}

func TestLedgerFailedCommitLeavesStateUnchanged(t *testing.T) {
	store := &recordingStore{}
	l := newTestLedger(store)
	l.Track(testTrip("t1", "c1", 100), nil)
	ctx := context.Background()

	b, err := l.BookSpace(ctx, "t1", "s1", 25, 0)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	store.fail = errors.New("disk full")
	if _, err := l.BookSpace(ctx, "t1", "s2", 25, 0); err == nil {
		t.Fatalf("expected commit error")
	}
	if _, err := l.CancelBooking(ctx, b.ID); err == nil {
		t.Fatalf("expected commit error on cancel")
	}
	if _, err := l.UpdateStatus(ctx, "t1", domain.TripInProgress); err == nil {
		t.Fatalf("expected commit error on status update")
	}

	trip, _ := l.Trip("t1")
	if trip.AvailableWeight() != 75 || len(trip.ShipmentIDs) != 1 || trip.Status != domain.TripActive {
		t.Fatalf("trip changed by failed commits: %+v", trip)
	}
	got, _ := l.Booking(b.ID)
	if !got.Active() {
		t.Fatalf("booking cancelled by failed commit")
	}
	bookings, _ := l.Bookings("t1")
	if len(bookings) != 1 {
		t.Fatalf("bookings = %d, want 1", len(bookings))
	}
}

func TestLedgerUpdateStatus(t *testing.T) {
	cases := []struct {
		path []domain.TripStatus
		ok   bool
	}{
		{[]domain.TripStatus{domain.TripInProgress, domain.TripCompleted}, true},
		{[]domain.TripStatus{domain.TripCancelled}, true},
		{[]domain.TripStatus{domain.TripInProgress, domain.TripCancelled}, true},
		{[]domain.TripStatus{domain.TripCompleted}, false},
		{[]domain.TripStatus{domain.TripCancelled, domain.TripActive}, false},
		{[]domain.TripStatus{domain.TripInProgress, domain.TripCompleted, domain.TripCancelled}, false},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprint(tc.path), func(t *testing.T) {
			l := newTestLedger(nil)
			id := fmt.Sprintf("t%d", i)
			l.Track(testTrip(id, "c1", 100), nil)

			var err error
			for _, st := range tc.path {
				if _, err = l.UpdateStatus(context.Background(), id, st); err != nil {
					break
				}
			}
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestLedgerConcurrentBookings(t *testing.T) {
	l := newTestLedger(nil)
	trip := testTrip("t1", "c1", 100)
	trip.MaxShipments = 100
	l.Track(trip, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.BookSpace(context.Background(), "t1", fmt.Sprintf("s%d", i), 10, 0)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok != 10 || full != 40 {
		t.Fatalf("booked %d, rejected %d; want 10 and 40", ok, full)
	}
	checkConservation(t, l, "t1")
}

func TestLedgerTrackIsIdempotent(t *testing.T) {
	l := newTestLedger(nil)
	trip := testTrip("t1", "c1", 100)
	trip.MaxShipments = 0
	l.Track(trip, nil)

	if _, err := l.BookSpace(context.Background(), "t1", "s1", 10, 0); err != nil {
		t.Fatalf("book: %v", err)
	}
	l.Track(testTrip("t1", "c1", 100), nil)

	got, _ := l.Trip("t1")
	if got.AvailableWeight() != 90 {
		t.Fatalf("re-tracking reset the trip: available %v", got.AvailableWeight())
	}
	if got.MaxShipments != domain.DefaultMaxShipments {
		t.Fatalf("max shipments = %d, want default %d", got.MaxShipments, domain.DefaultMaxShipments)
	}
}

func TestLedgerStats(t *testing.T) {
	l := newTestLedger(nil)
	l.Track(testTrip("t1", "c1", 200), nil)
	ctx := context.Background()

	a, _ := l.BookSpace(ctx, "t1", "s1", 50, 0)
	_, _ = l.BookSpace(ctx, "t1", "s2", 25, 0)
	_, _ = l.CancelBooking(ctx, a.ID)

	st, err := l.Stats("t1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.UsedSpace != 25 || st.AvailableSpace != 175 || st.UtilizationPct != 12.5 {
		t.Fatalf("stats = %+v", st)
	}
	if st.ShipmentsCount != 1 || st.ConfirmedBookings != 1 || st.MaxShipments != 10 {
		t.Fatalf("stats counts = %+v", st)
	}
}

func TestLedgerSimilarTrips(t *testing.T) {
	l := newTestLedger(nil)

	ref := testTrip("ref", "c1", 100)
	twin := testTrip("twin", "c2", 120)
	sameOrigin := testTrip("same-origin", "c3", 100)
	sameOrigin.Destination = loc("Dammam")
	sameOrigin.DepartureDate = ref.DepartureDate.Add(48 * time.Hour)
	unrelated := testTrip("unrelated", "c4", 5000)
	unrelated.Origin, unrelated.Destination = loc("Abha"), loc("Tabuk")
	unrelated.DepartureDate = ref.DepartureDate.Add(30 * 24 * time.Hour)
	closed := testTrip("closed", "c5", 100)
	closed.Status = domain.TripCompleted

	for _, tr := range []*domain.Trip{ref, unrelated, sameOrigin, closed, twin} {
		l.Track(tr, nil)
	}

	got, err := l.SimilarTrips("ref", 0)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, tr := range got {
		ids = append(ids, tr.ID)
	}
	if !equalIDs(ids, []string{"twin", "same-origin"}) {
		t.Fatalf("similar = %v, want [twin same-origin]", ids)
	}

	if _, err := l.SimilarTrips("nope", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLedgerBookedWeightFollowsConfirmedBookings(t *testing.T) {
	l := newTestLedger(nil)
	l.Track(testTrip("t1", "c1", 100), nil)
	ctx := context.Background()

	var ids []string
	for i, w := range []float64{0.1, 0.2, 0.7} {
		b, err := l.BookSpace(ctx, "t1", fmt.Sprintf("s%d", i), w, 0)
		if err != nil {
			t.Fatalf("book %v: %v", w, err)
		}
		ids = append(ids, b.ID)
	}
	if _, err := l.CancelBooking(ctx, ids[1]); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	trip, _ := l.Trip("t1")
	if want := 0.1 + 0.7; trip.BookedWeight != want {
		t.Fatalf("booked = %v, want %v", trip.BookedWeight, want)
	}

	for _, id := range []string{ids[0], ids[2]} {
		if _, err := l.CancelBooking(ctx, id); err != nil {
			t.Fatalf("cancel %s: %v", id, err)
		}
	}
	trip, _ = l.Trip("t1")
	if trip.BookedWeight != 0 || trip.AvailableWeight() != 100 {
		t.Fatalf("booked = %v available = %v, want 0 and 100", trip.BookedWeight, trip.AvailableWeight())
	}
	checkConservation(t, l, "t1")
}
