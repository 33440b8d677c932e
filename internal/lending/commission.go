package lending

import (
	"fmt"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MatchTier returns the first tier with MinAmount <= principal < MaxAmount.
// Tiers are assumed valid and ordered; see ValidateTiers.
func MatchTier(principal decimal.Decimal, tiers []models.CommissionTier) (*models.CommissionTier, error) {
	for i := range tiers {
		t := tiers[i]
		if principal.LessThan(t.MinAmount) {
			continue
		}
		if t.Unbounded() || principal.LessThan(t.MaxAmount) {
			return &t, nil
		}
	}
	return nil, configuration(fmt.Sprintf(
		"no hay un tramo de comisión configurado para el monto %s; revise la configuración del proveedor",
		principal.StringFixed(2)))
}

// ResolveCommission computes the commission charged on principal using the
// provider's tiered percentages, rounded to cents.
func ResolveCommission(principal decimal.Decimal, tiers []models.CommissionTier) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, validation("el monto del crédito debe ser mayor a cero")
	}
	tier, err := MatchTier(principal, tiers)
	if err != nil {
		return decimal.Zero, err
	}
	return principal.Mul(tier.Percentage).Div(hundred).Round(2), nil
}

// ValidateTiers checks a tier table before it is saved. Tiers must start at
// zero, be sorted, contiguous and non-overlapping, and only the last one may
// be unbounded.
func ValidateTiers(tiers []models.CommissionTier) error {
	if len(tiers) == 0 {
		return validation("debe configurar al menos un tramo de comisión")
	}
	if !tiers[0].MinAmount.IsZero() {
		return validation("el primer tramo de comisión debe iniciar en cero")
	}

	for i, t := range tiers {
		n := i + 1
		if t.MinAmount.IsNegative() {
			return validation(fmt.Sprintf("tramo %d: el monto mínimo no puede ser negativo", n))
		}
		if !t.Percentage.IsPositive() || t.Percentage.GreaterThan(hundred) {
			return validation(fmt.Sprintf("tramo %d: el porcentaje debe estar entre 0 y 100", n))
		}
		if t.Unbounded() {
			if i != len(tiers)-1 {
				return validation(fmt.Sprintf("tramo %d: solo el último tramo puede no tener monto máximo", n))
			}
		} else if !t.MinAmount.LessThan(t.MaxAmount) {
			return validation(fmt.Sprintf("tramo %d: el monto mínimo debe ser menor al máximo", n))
		}

		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		switch {
		case t.MinAmount.LessThan(prev.MaxAmount):
			return validation(fmt.Sprintf("tramo %d se superpone con el tramo %d", n, i))
		case t.MinAmount.GreaterThan(prev.MaxAmount):
			return validation(fmt.Sprintf("hay un vacío entre el tramo %d y el tramo %d", i, n))
		}
	}
	return nil
}
