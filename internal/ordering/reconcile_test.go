package ordering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

func TestReconcileRebuildsMirror(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)

	kept := f.placeOne(t, "STU1")
	lost := f.placeOne(t, "STU1")
	f.db.DropMirrorOrder("STU1", lost.ID)

	orphan := kept
	orphan.ID = "orphan"
	require.NoError(t, f.st.StudentOrders.Put(ctx, orphan))

	cancelled := models.StatusCancelled
	stale := kept
	stale.Status = cancelled
	require.NoError(t, f.st.StudentOrders.Put(ctx, stale))

	report, err := f.svc.ReconcileStudent(ctx, "stu1")
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{PID: "STU1", Rewritten: 2, Removed: 1}, report)

	mine, err := f.svc.ListOrdersForStudent(ctx, "STU1", 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, models.StatusPlaced, o.Status)
		assert.NotEqual(t, "orphan", o.ID)
	}
}
