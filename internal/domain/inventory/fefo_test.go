package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

func batch(id string, expiry time.Time, qty string) *entity.Batch {
	return &entity.Batch{ID: id, ExpiryDate: expiry, Quantity: d(qty), CreatedAt: date(2023, 12, 1)}
}

func TestPlanConsumption_VencePrimeroSalePrimero(t *testing.T) {
	b2 := batch("B2", date(2024, 1, 10), "5")
	b1 := batch("B1", date(2024, 1, 5), "5")

	takes, remaining := inventory.PlanConsumption([]*entity.Batch{b2, b1}, d("7"))
	require.Len(t, takes, 2)
	assert.Equal(t, "B1", takes[0].Batch.ID)
	assert.Equal(t, "5", takes[0].Quantity.String())
	assert.Equal(t, "B2", takes[1].Batch.ID)
	assert.Equal(t, "2", takes[1].Quantity.String())
	assert.True(t, remaining.IsZero())
	assert.Equal(t, "5", b1.Quantity.String(), "el plan no modifica los lotes")
}

func TestPlanConsumption_Insuficiente(t *testing.T) {
	takes, remaining := inventory.PlanConsumption([]*entity.Batch{batch("B1", date(2024, 1, 5), "2")}, d("5"))
	require.Len(t, takes, 1)
	assert.Equal(t, "3", remaining.String())
}

func TestPlanConsumption_IgnoraLotesVacios(t *testing.T) {
	takes, remaining := inventory.PlanConsumption([]*entity.Batch{
		batch("B0", date(2024, 1, 1), "0"),
		batch("B1", date(2024, 1, 5), "4"),
	}, d("1"))
	require.Len(t, takes, 1)
	assert.Equal(t, "B1", takes[0].Batch.ID)
	assert.True(t, remaining.Equal(decimal.Zero))
}

func TestSortFEFO_Desempate(t *testing.T) {
	same := date(2024, 1, 5)
	older := &entity.Batch{ID: "Z", ExpiryDate: same, CreatedAt: date(2023, 1, 1)}
	newerA := &entity.Batch{ID: "A", ExpiryDate: same, CreatedAt: date(2023, 6, 1)}
	newerB := &entity.Batch{ID: "B", ExpiryDate: same, CreatedAt: date(2023, 6, 1)}

	list := []*entity.Batch{newerB, newerA, older}
	inventory.SortFEFO(list)
	assert.Equal(t, []string{"Z", "A", "B"}, []string{list[0].ID, list[1].ID, list[2].ID})
}
