package board

import (
	"fmt"

	"github.com/bytedance/sonic"

	"kitchen-display/internal/domain"
)

// demoOrders is the stock demo list, in the wire format of new_order.
const demoOrders = `[
	{"id": "001", "table": 12, "startedAt": "14:17", "status": "COOKING", "timeRemaining": "6:58"},
	{"id": "002", "table": 8, "startedAt": "14:15", "status": "PREPARING", "timeRemaining": "9:58"},
	{"id": "003", "table": 5, "startedAt": "14:04", "status": "OVERDUE", "timeRemaining": "OVERDUE"},
	{"id": "004", "table": 15, "startedAt": "14:18", "status": "NEW", "timeRemaining": "12:58"},
	{"id": "005", "table": 3, "startedAt": "14:08", "status": "COOKING", "timeRemaining": "2:58"},
	{"id": "006", "table": 9, "startedAt": "14:13", "status": "PREPARING", "timeRemaining": "7:58"},
	{"id": "007", "table": 21, "startedAt": "14:20", "status": "NEW", "timeRemaining": "14:25"},
	{"id": "008", "table": 7, "startedAt": "14:12", "status": "COOKING", "timeRemaining": "5:12"},
	{"id": "009", "table": 14, "startedAt": "14:16", "status": "PREPARING", "timeRemaining": "8:45"},
	{"id": "010", "table": 6, "startedAt": "14:02", "status": "OVERDUE", "timeRemaining": "OVERDUE"},
	{"id": "011", "table": 18, "startedAt": "14:19", "status": "NEW", "timeRemaining": "13:17"}
]`

// DemoOrders returns the demo list used by --seed.
func DemoOrders() ([]domain.NewOrder, error) {
	var rows []domain.NewOrder
	if err := sonic.UnmarshalString(demoOrders, &rows); err != nil {
		return nil, fmt.Errorf("decode demo orders: %w", err)
	}
	return rows, nil
}
