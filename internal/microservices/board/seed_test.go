package board

import "testing"

func TestDemoOrders(t *testing.T) {
	rows, err := DemoOrders()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 {
		t.Fatalf("expected 11 demo orders, got %d", len(rows))
	}
	first, overdue := rows[0], rows[2]
	if first.ID != "001" || first.Table != "12" || *first.TimeRemaining != 418 || first.Label() != "14:17" {
		t.Fatalf("unexpected first order %+v", first)
	}
	if overdue.Status != "OVERDUE" || *overdue.TimeRemaining != 0 {
		t.Fatalf("unexpected overdue order %+v", overdue)
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			t.Fatalf("%s: %v", r.ID, err)
		}
	}
}
