package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

func TestVigencyNoDiscrepancyWhenAligned(t *testing.T) {
	end := "2025-06-30"
	svc := svcWith(t, enums.AdminStatusEnabled, true, &end)
	periods := []models.ServicePeriod{periodWith(t, "2025-06-01", "2025-06-30", enums.PeriodStatusPaid)}

	info := Vigency(svc, periods)
	assert.True(t, info.HasPaidPeriods)
	assert.False(t, info.HasDiscrepancy)
	require.NotNil(t, info.EffectiveEndDate)
	assert.Equal(t, date(t, "2025-06-30"), *info.EffectiveEndDate)
}

func TestVigencyEarlyTermination(t *testing.T) {
	end := "2025-06-15"
	svc := svcWith(t, enums.AdminStatusEnabled, true, &end)
	periods := []models.ServicePeriod{periodWith(t, "2025-06-01", "2025-06-30", enums.PeriodStatusPaid)}

	info := Vigency(svc, periods)
	assert.True(t, info.HasDiscrepancy)
	assert.Equal(t, DiscrepancyEarlyTermination, info.DiscrepancyType)
	assert.Equal(t, 15, info.DiscrepancyDays)
	require.NotNil(t, info.EffectiveEndDate)
	assert.Equal(t, date(t, "2025-06-30"), *info.EffectiveEndDate)
}

func TestVigencyLatePayment(t *testing.T) {
	end := "2025-07-15"
	svc := svcWith(t, enums.AdminStatusEnabled, true, &end)
	periods := []models.ServicePeriod{periodWith(t, "2025-06-01", "2025-06-30", enums.PeriodStatusPaid)}

	info := Vigency(svc, periods)
	assert.True(t, info.HasDiscrepancy)
	assert.Equal(t, DiscrepancyLatePayment, info.DiscrepancyType)
	assert.Equal(t, 15, info.DiscrepancyDays)
}

func TestVigencyWithoutPaidPeriods(t *testing.T) {
	svc := svcWith(t, enums.AdminStatusEnabled, true, nil)
	info := Vigency(svc, nil)
	assert.False(t, info.HasPaidPeriods)
	assert.False(t, info.HasDiscrepancy)
	assert.Nil(t, info.EffectiveEndDate)
}
