package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "park.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordIgnoresForeignPayloads(t *testing.T) {
	j := New(testDB(t), nil, zap.NewNop())
	if err := j.Record(bus.Event{Kind: "parking.other", Payload: "x"}); err != nil {
		t.Fatal(err)
	}
	rows, err := j.db.RecentActivity(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestJournalPersistsServiceEvents(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	j := New(db, b, zap.NewNop())
	j.Start(context.Background())
	defer j.Stop()

	svc := parking.NewService(db, b, zap.NewNop())
	v, err := svc.CheckIn(parking.CheckInRequest{Plate: "KDA123A", Type: "car"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CheckOut("KDA123A"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rows, err := db.RecentActivity(10)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) == 2 {
			for _, r := range rows {
				if r.Ticket != v.Ticket || r.Plate != "KDA123A" {
					t.Errorf("row = %+v", r)
				}
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("journal has %d rows, want 2", len(rows))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
