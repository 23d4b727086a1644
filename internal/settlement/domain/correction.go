package domain

import (
	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/money"
	"github.com/shopspring/decimal"
)

type lineKey struct {
	Source  LineSource
	PriceID uuid.UUID
}

func keyOf(source LineSource, priceID *uuid.UUID) lineKey {
	k := lineKey{Source: source}
	if priceID != nil {
		k.PriceID = *priceID
	}
	return k
}

// CalculateCorrection recalculates the period with the revised series and
// emits only the per-line deltas against the invoiced original. Lines whose
// amount did not change are omitted; running it with an unchanged series
// yields no lines and a zero total.
//
// Each delta line's amount is recomputed from quantity times unit price,
// which makes it the authoritative delta even under ore rounding.
func CalculateCorrection(input CalculationInput, originalTotalEnergy decimal.Decimal, originalLines []SettlementLine) (CalculationResult, error) {
	fullNew, err := Calculate(input)
	if err != nil {
		return CalculationResult{}, err
	}

	byKey := make(map[lineKey]SettlementLine, len(originalLines))
	for _, l := range originalLines {
		byKey[keyOf(l.Source, l.PriceID)] = l
	}

	var lines []LineDraft
	total := decimal.Zero
	for _, newLine := range fullNew.Lines {
		deltaAmount := newLine.Amount
		deltaQty := newLine.Quantity
		if original, ok := byKey[keyOf(newLine.Source, newLine.PriceID)]; ok {
			deltaAmount = newLine.Amount.Sub(original.Amount)
			deltaQty = newLine.Quantity.Sub(original.Quantity)
		}
		if deltaAmount.IsZero() {
			continue
		}
		unitPrice := newLine.UnitPrice
		if !deltaQty.IsZero() {
			unitPrice = deltaAmount.Div(deltaQty)
		}
		amount := money.RoundAmount(deltaQty.Mul(unitPrice))
		lines = append(lines, LineDraft{
			Source:      newLine.Source,
			PriceID:     newLine.PriceID,
			Description: newLine.Description + " (justering)",
			Quantity:    deltaQty,
			UnitPrice:   unitPrice,
			Amount:      amount,
		})
		total = total.Add(amount)
	}

	return CalculationResult{
		TotalEnergy: fullNew.TotalEnergy.Sub(originalTotalEnergy),
		TotalAmount: money.RoundAmount(total),
		Lines:       lines,
	}, nil
}
