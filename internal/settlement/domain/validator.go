package domain

import (
	"fmt"

	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/pkg/period"
)

// RequiredCategories are the charge categories a fully linked metering point
// must cover before its settlement can be invoiced.
var RequiredCategories = []pricedomain.PriceCategory{
	pricedomain.CategorySpotPris,
	pricedomain.CategoryNettarif,
	pricedomain.CategorySystemtarif,
	pricedomain.CategoryTransmissionstarif,
	pricedomain.CategoryElafgift,
	pricedomain.CategoryBalancetarif,
	pricedomain.CategoryLeverandoertillaeg,
}

// Finding is one completeness defect detected before scheduling.
type Finding struct {
	IssueType IssueType
	Message   string
	Details   string
}

// ValidatePricing runs the two completeness checks: category coverage over
// the active links, and point coverage (a rate must resolve at the period
// start) for every linked price. The calculator runs regardless of findings;
// open findings only block the invoicing step.
func ValidatePricing(prices []*pricedomain.PriceWithPoints, p period.Period) []Finding {
	var findings []Finding

	covered := make(map[pricedomain.PriceCategory]bool, len(prices))
	for _, pw := range prices {
		covered[pw.Price.Category] = true
	}
	for _, category := range RequiredCategories {
		if covered[category] {
			continue
		}
		findings = append(findings, Finding{
			IssueType: IssueMissingPriceCategory,
			Message:   category.DisplayName(),
			Details:   fmt.Sprintf("no active price link in category %s for %s", category.DisplayName(), p),
		})
	}

	for _, pw := range prices {
		if _, ok := pw.PriceAt(p.Start); ok {
			continue
		}
		findings = append(findings, Finding{
			IssueType: IssueMissingPricePoints,
			Message:   pw.Price.Description,
			Details: fmt.Sprintf("price %s (%s) has no resolvable point at %s",
				pw.Price.ChargeID, pw.Price.OwnerGln, p.Start.Format("2006-01-02")),
		})
	}

	return findings
}
