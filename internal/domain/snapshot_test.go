package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

func TestNewSnapshot_SubtotalAndStatus(t *testing.T) {
	items := []domain.OrderItem{
		makeItem("item-0", "10.00", 2, domain.ListTypeBuy),
		makeItem("item-1", "99.99", 1, domain.ListTypeWishlist),
	}

	snap := domain.NewSnapshot("order-1", "AB12", items, 2)
	if snap.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", snap.Status)
	}
	if !snap.Subtotal.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected subtotal 20, got %s", snap.Subtotal)
	}

	items[0].Quantity = 100
	if snap.Items[0].Quantity != 2 {
		t.Fatal("snapshot must not share the item slice with the caller")
	}
}

func TestSnapshot_NextItemSeq(t *testing.T) {
	cases := []struct {
		name string
		snap domain.Snapshot
		want int
	}{
		{name: "empty", snap: domain.Snapshot{}, want: 0},
		{name: "stored seq wins after removal", snap: domain.Snapshot{
			ItemSeq: 5,
			Items:   []domain.OrderItem{{ID: "item-1"}},
		}, want: 5},
		{name: "legacy snapshot derives from ids", snap: domain.Snapshot{
			Items: []domain.OrderItem{{ID: "item-0"}, {ID: "item-7"}, {ID: "foreign"}},
		}, want: 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.snap.NextItemSeq(); got != tc.want {
				t.Fatalf("NextItemSeq() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestItemID(t *testing.T) {
	if got := domain.ItemID(3); got != "item-3" {
		t.Fatalf("ItemID(3) = %q", got)
	}
}
