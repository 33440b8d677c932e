package lending

import (
	"testing"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tieredTable() []models.CommissionTier {
	return []models.CommissionTier{
		{MinAmount: dec("0"), MaxAmount: dec("100000"), Percentage: dec("10")},
		{MinAmount: dec("100000"), MaxAmount: dec("1000000"), Percentage: dec("15")},
		{MinAmount: dec("1000000"), MaxAmount: dec("0"), Percentage: dec("20")},
	}
}

func TestResolveCommission(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		want      string
	}{
		{"first tier", "50000", "5000"},
		{"just below boundary", "99999.99", "10000"},
		{"lower bound is inclusive", "100000", "15000"},
		{"middle tier", "500000", "75000"},
		{"unbounded tier", "1000000", "200000"},
		{"large principal", "25000000", "5000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCommission(dec(tt.principal), tieredTable())
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestResolveCommission_FlatTwentyPercent(t *testing.T) {
	flat := []models.CommissionTier{{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("20")}}

	got, err := ResolveCommission(dec("500000"), flat)
	require.NoError(t, err)
	assert.True(t, dec("100000").Equal(got))
}

func TestResolveCommission_IsDeterministic(t *testing.T) {
	tiers := tieredTable()
	first, err := ResolveCommission(dec("123456.78"), tiers)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := ResolveCommission(dec("123456.78"), tiers)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestResolveCommission_Errors(t *testing.T) {
	bounded := []models.CommissionTier{
		{MinAmount: dec("0"), MaxAmount: dec("1000000"), Percentage: dec("10")},
	}

	_, err := ResolveCommission(dec("2000000"), bounded)
	assert.True(t, IsConfiguration(err))

	_, err = ResolveCommission(dec("0"), bounded)
	assert.True(t, IsValidation(err))

	_, err = ResolveCommission(dec("-10"), bounded)
	assert.True(t, IsValidation(err))

	_, err = ResolveCommission(dec("100"), nil)
	assert.True(t, IsConfiguration(err))
}

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []models.CommissionTier
		wantErr bool
	}{
		{"valid table", tieredTable(), false},
		{"single unbounded tier", []models.CommissionTier{{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("20")}}, false},
		{"empty", nil, true},
		{"does not start at zero", []models.CommissionTier{
			{MinAmount: dec("100"), MaxAmount: dec("0"), Percentage: dec("10")},
		}, true},
		{"overlap", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("1000"), Percentage: dec("10")},
			{MinAmount: dec("900"), MaxAmount: dec("0"), Percentage: dec("15")},
		}, true},
		{"gap", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("1000"), Percentage: dec("10")},
			{MinAmount: dec("1500"), MaxAmount: dec("0"), Percentage: dec("15")},
		}, true},
		{"unbounded in the middle", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("10")},
			{MinAmount: dec("1000"), MaxAmount: dec("2000"), Percentage: dec("15")},
		}, true},
		{"zero percentage", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("0")},
		}, true},
		{"percentage above 100", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("100.01")},
		}, true},
		{"percentage of exactly 100", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("0"), Percentage: dec("100")},
		}, false},
		{"min not below max", []models.CommissionTier{
			{MinAmount: dec("0"), MaxAmount: dec("1000"), Percentage: dec("10")},
			{MinAmount: dec("1000"), MaxAmount: dec("1000"), Percentage: dec("10")},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if tt.wantErr {
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatedTiersCoverEveryPrincipal(t *testing.T) {
	tiers := tieredTable()
	require.NoError(t, ValidateTiers(tiers))

	for _, p := range []string{"0.01", "1", "99999.99", "100000", "100000.01", "999999.99", "1000000", "999999999"} {
		_, err := MatchTier(dec(p), tiers)
		assert.NoError(t, err, p)
	}
}
