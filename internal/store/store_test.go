package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func park(t *testing.T, db *DB, ticket, plate, vehicleType string) *Vehicle {
	t.Helper()
	v := &Vehicle{Ticket: ticket, Plate: plate, Type: vehicleType}
	if err := db.CheckIn(v); err != nil {
		t.Fatalf("CheckIn(%s) error = %v", plate, err)
	}
	return v
}

func TestMigrateAppliesOnFreshDB(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so run it again to check idempotency.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed() {
		t.Errorf("second Migrate() changed schema %d -> %d", result.From, result.To)
	}
	if result.To != 2 {
		t.Errorf("version = %d, want 2 (init + activity)", result.To)
	}
}

func TestDefaultSpacesSeeded(t *testing.T) {
	db := testDB(t)

	spaces, err := db.ListSpaces()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"motorcycle": 50, "bajaj": 30, "car": 20}
	if len(spaces) != len(want) {
		t.Fatalf("got %d spaces, want %d", len(spaces), len(want))
	}
	for _, s := range spaces {
		if s.Total != want[s.Type] || s.Occupied != 0 {
			t.Errorf("space %s = %d/%d, want 0/%d", s.Type, s.Occupied, s.Total, want[s.Type])
		}
	}
	if spaces[0].Type != "motorcycle" {
		t.Errorf("first space = %s, want motorcycle", spaces[0].Type)
	}
}

func TestCheckInTakesSpace(t *testing.T) {
	db := testDB(t)

	v := park(t, db, "T1", "KDA123A", "car")
	if v.ID == 0 || v.CheckInAt == 0 || v.Status != StatusActive {
		t.Errorf("vehicle not filled in: %+v", v)
	}

	s, err := db.GetSpace("car")
	if err != nil {
		t.Fatal(err)
	}
	if s.Occupied != 1 || s.Available() != 19 {
		t.Errorf("car space = %+v, want 1 occupied", s)
	}
}

func TestCheckInUnknownType(t *testing.T) {
	db := testDB(t)

	err := db.CheckIn(&Vehicle{Ticket: "T1", Plate: "ABC123", Type: "truck"})
	if !errors.Is(err, ErrNoSpace) {
		t.Errorf("CheckIn(truck) = %v, want ErrNoSpace", err)
	}
}

func TestCheckInFull(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE parking_spaces SET total = 2 WHERE vehicle_type = 'bajaj'`); err != nil {
		t.Fatal(err)
	}

	park(t, db, "T1", "BAJ001", "bajaj")
	park(t, db, "T2", "BAJ002", "bajaj")

	err := db.CheckIn(&Vehicle{Ticket: "T3", Plate: "BAJ003", Type: "bajaj"})
	if !errors.Is(err, ErrNoSpace) {
		t.Fatalf("third CheckIn = %v, want ErrNoSpace", err)
	}
	s, _ := db.GetSpace("bajaj")
	if s.Occupied != 2 {
		t.Errorf("occupied = %d, want 2", s.Occupied)
	}
}

func TestCheckInAlreadyParked(t *testing.T) {
	db := testDB(t)
	park(t, db, "T1", "KDA123A", "car")

	err := db.CheckIn(&Vehicle{Ticket: "T2", Plate: "KDA123A", Type: "motorcycle"})
	if !errors.Is(err, ErrAlreadyParked) {
		t.Fatalf("CheckIn duplicate = %v, want ErrAlreadyParked", err)
	}
	s, _ := db.GetSpace("motorcycle")
	if s.Occupied != 0 {
		t.Errorf("failed check-in took a space: %+v", s)
	}
}

func TestCheckOutFreesSpace(t *testing.T) {
	db := testDB(t)
	park(t, db, "T1", "KDA123A", "car")

	v, err := db.CheckOut("KDA123A")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusCompleted || v.CheckOutAt == 0 || v.Ticket != "T1" {
		t.Errorf("checked out vehicle = %+v", v)
	}

	s, _ := db.GetSpace("car")
	if s.Occupied != 0 {
		t.Errorf("occupied = %d, want 0", s.Occupied)
	}

	if _, err := db.CheckOut("KDA123A"); !errors.Is(err, ErrNotParked) {
		t.Errorf("second CheckOut = %v, want ErrNotParked", err)
	}
}

func TestCheckOutFloorsAtZero(t *testing.T) {
	db := testDB(t)
	park(t, db, "T1", "KDA123A", "car")
	if _, err := db.Exec(`UPDATE parking_spaces SET occupied = 0 WHERE vehicle_type = 'car'`); err != nil {
		t.Fatal(err)
	}

	if _, err := db.CheckOut("KDA123A"); err != nil {
		t.Fatal(err)
	}
	s, _ := db.GetSpace("car")
	if s.Occupied != 0 {
		t.Errorf("occupied = %d, want 0", s.Occupied)
	}
}

func TestPlateCanParkAgainAfterCheckOut(t *testing.T) {
	db := testDB(t)
	park(t, db, "T1", "KDA123A", "car")
	if _, err := db.CheckOut("KDA123A"); err != nil {
		t.Fatal(err)
	}
	park(t, db, "T2", "KDA123A", "car")

	v, err := db.ActiveVehicle("KDA123A")
	if err != nil {
		t.Fatal(err)
	}
	if v.Ticket != "T2" {
		t.Errorf("active ticket = %s, want T2", v.Ticket)
	}
}

func TestListActiveVehiclesAndRevision(t *testing.T) {
	db := testDB(t)

	rev0, err := db.Revision()
	if err != nil {
		t.Fatal(err)
	}

	park(t, db, "T1", "AAA111", "car")
	park(t, db, "T2", "BBB222", "motorcycle")
	park(t, db, "T3", "CCC333", "bajaj")
	if _, err := db.CheckOut("BBB222"); err != nil {
		t.Fatal(err)
	}

	vehicles, err := db.ListActiveVehicles()
	if err != nil {
		t.Fatal(err)
	}
	if len(vehicles) != 2 || vehicles[0].Plate != "AAA111" || vehicles[1].Plate != "CCC333" {
		t.Errorf("active = %+v", vehicles)
	}

	rev, _ := db.Revision()
	if rev != rev0+4 {
		t.Errorf("revision = %d, want %d", rev, rev0+4)
	}
}

func TestConcurrentCheckInsRespectCapacity(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE parking_spaces SET total = 5 WHERE vehicle_type = 'car'`); err != nil {
		t.Fatal(err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		parked  int
		noSpace int
	)
	for i := 0; i < 12; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.CheckIn(&Vehicle{Ticket: fmt.Sprintf("T%d", i), Plate: fmt.Sprintf("CAR%03d", i), Type: "car"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				parked++
			case errors.Is(err, ErrNoSpace):
				noSpace++
			default:
				t.Errorf("CheckIn error = %v", err)
			}
		}()
	}
	wg.Wait()

	if parked != 5 || noSpace != 7 {
		t.Errorf("parked=%d noSpace=%d, want 5 and 7", parked, noSpace)
	}
}

func TestActivityJournal(t *testing.T) {
	db := testDB(t)

	rows := []Activity{
		{Kind: "parking.checked_in", Ticket: "T1", Plate: "AAA111", Type: "car", At: 100},
		{Kind: "parking.checked_out", Ticket: "T1", Plate: "AAA111", Type: "car", At: 200},
		{Kind: "parking.checked_in", Ticket: "T1", Plate: "AAA111", Type: "car", At: 100},
	}
	for _, a := range rows {
		if err := db.InsertActivity(a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentActivity(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2 (replay ignored)", len(got))
	}
	if got[0].Kind != "parking.checked_out" {
		t.Errorf("newest = %s, want checked_out", got[0].Kind)
	}
}
