package domain

import (
	"github.com/nordlux/elcore/internal/cim"
	"github.com/nordlux/elcore/pkg/apperr"
)

// ProcessShape is the interaction pattern of a process type.
type ProcessShape string

const (
	// ShapeRequestResponse sends a request and waits for confirm/reject/data.
	ShapeRequestResponse ProcessShape = "REQUEST_RESPONSE"
	// ShapeBidirectional can be run as initiator or land on us as recipient.
	ShapeBidirectional ProcessShape = "BIDIRECTIONAL"
	// ShapeRecipientApply only ever arrives inbound and mutates master data.
	ShapeRecipientApply ProcessShape = "RECIPIENT_APPLY"
)

// ProcessSpec binds a process type to its wire document and process code.
type ProcessSpec struct {
	Name        string
	Shape       ProcessShape
	Document    cim.DocumentType
	ProcessCode string
}

var catalog = map[ProcessType]ProcessSpec{
	BRS001: {Name: "Leverandørskift", Shape: ShapeBidirectional, Document: cim.DocRequestChangeOfSupplier, ProcessCode: cim.ProcessSupplierChange},
	BRS002: {Name: "Leveranceophør", Shape: ShapeRequestResponse, Document: cim.DocRequestEndOfSupply, ProcessCode: cim.ProcessEndOfSupply},
	BRS003: {Name: "Fejlagtigt leverandørskift", Shape: ShapeBidirectional, Document: cim.DocRequestChangeOfSupplier, ProcessCode: "D33"},
	BRS004: {Name: "Nyt målepunkt", Shape: ShapeRecipientApply, Document: cim.DocNotifyMPCharacteristics, ProcessCode: "E02"},
	BRS005: {Name: "Anmod om stamdata", Shape: ShapeRequestResponse, Document: cim.DocRequestMPCharacteristics, ProcessCode: "E06"},
	BRS006: {Name: "Stamdataopdatering", Shape: ShapeRecipientApply, Document: cim.DocNotifyMPCharacteristics, ProcessCode: "E32"},
	BRS007: {Name: "Nedlæggelse", Shape: ShapeRecipientApply, Document: cim.DocNotifyMPCharacteristics, ProcessCode: "D14"},
	BRS008: {Name: "Tilslutning", Shape: ShapeRecipientApply, Document: cim.DocNotifyMPCharacteristics, ProcessCode: "D15"},
	BRS009: {Name: "Tilflytning", Shape: ShapeBidirectional, Document: cim.DocRequestChangeOfSupplier, ProcessCode: "E65"},
	BRS010: {Name: "Fraflytning", Shape: ShapeRequestResponse, Document: cim.DocRequestEndOfSupply, ProcessCode: "E66"},
	BRS011: {Name: "Fejlagtig flytning", Shape: ShapeBidirectional, Document: cim.DocRequestChangeOfSupplier, ProcessCode: "D34"},
	BRS013: {Name: "Afbrydelse/gentilslutning", Shape: ShapeRecipientApply, Document: cim.DocNotifyMPCharacteristics, ProcessCode: "D19"},
	BRS015: {Name: "Kundestamdata", Shape: ShapeRequestResponse, Document: cim.DocUpdateCustomerCharacteristics, ProcessCode: cim.ProcessCustomerUpdate},
	BRS021: {Name: "Måledata", Shape: ShapeRecipientApply, Document: cim.DocNotifyValidatedMeasureData, ProcessCode: cim.ProcessMeteredData},
	BRS023: {Name: "Anmod om aggregerede data", Shape: ShapeRequestResponse, Document: cim.DocRequestAggregatedMeasureData, ProcessCode: "D03"},
	BRS024: {Name: "Anmod om årssum", Shape: ShapeRequestResponse, Document: cim.DocRequestAggregatedMeasureData, ProcessCode: "D04"},
	BRS025: {Name: "Anmod om måledata", Shape: ShapeRequestResponse, Document: cim.DocRequestValidatedMeasureData, ProcessCode: cim.ProcessMeteredData},
	BRS027: {Name: "Engrosafregning", Shape: ShapeRequestResponse, Document: cim.DocRequestWholesaleSettlement, ProcessCode: cim.ProcessWholesaleSettlement},
	BRS031: {Name: "Prisdata", Shape: ShapeRecipientApply, Document: cim.DocNotifyChargeInformation, ProcessCode: cim.ProcessChargeInformation},
	BRS034: {Name: "Anmod om priser", Shape: ShapeRequestResponse, Document: cim.DocRequestChargeInformation, ProcessCode: cim.ProcessChargePrices},
	BRS036: {Name: "Produktforpligtelse", Shape: ShapeRecipientApply, Document: cim.DocNotifyChargeLinks, ProcessCode: "D10"},
	BRS038: {Name: "Anmod om prislinks", Shape: ShapeRequestResponse, Document: cim.DocNotifyChargeLinks, ProcessCode: cim.ProcessChargeLinks},
	BRS039: {Name: "Serviceanmodning", Shape: ShapeRequestResponse, Document: cim.DocRequestService, ProcessCode: "D24"},
	BRS041: {Name: "Elvarme", Shape: ShapeRequestResponse, Document: cim.DocRequestElectricalHeating, ProcessCode: cim.ProcessElectricalHeating},
	BRS044: {Name: "Tvangsflytning", Shape: ShapeBidirectional, Document: cim.DocRequestChangeOfSupplier, ProcessCode: "D35"},
}

// Catalog resolves the spec for a process type.
func Catalog(pt ProcessType) (ProcessSpec, error) {
	spec, ok := catalog[pt]
	if !ok {
		return ProcessSpec{}, apperr.New(apperr.ErrValidation, "unknown process type %q", pt)
	}
	return spec, nil
}

// SupportedProcesses lists every process type in the catalog.
func SupportedProcesses() []ProcessType {
	types := make([]ProcessType, 0, len(catalog))
	for pt := range catalog {
		types = append(types, pt)
	}
	return types
}
