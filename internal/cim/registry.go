package cim

import "github.com/nordlux/elcore/pkg/apperr"

// DocumentType is the top-level document name of an envelope.
type DocumentType string

const (
	DocRequestChangeOfSupplier       DocumentType = "RequestChangeOfSupplier_MarketDocument"
	DocConfirmChangeOfSupplier       DocumentType = "ConfirmRequestChangeOfSupplier_MarketDocument"
	DocRejectChangeOfSupplier        DocumentType = "RejectRequestChangeOfSupplier_MarketDocument"
	DocRequestEndOfSupply            DocumentType = "RequestEndOfSupply_MarketDocument"
	DocNotifyMPCharacteristics       DocumentType = "NotifyAccountingPointCharacteristics_MarketDocument"
	DocRequestMPCharacteristics      DocumentType = "RequestAccountingPointCharacteristics_MarketDocument"
	DocNotifyValidatedMeasureData    DocumentType = "NotifyValidatedMeasureData_MarketDocument"
	DocRequestAggregatedMeasureData  DocumentType = "RequestAggregatedMeasureData_MarketDocument"
	DocRequestValidatedMeasureData   DocumentType = "RequestValidatedMeasureData_MarketDocument"
	DocNotifyAggregatedMeasureData   DocumentType = "NotifyAggregatedMeasureData_MarketDocument"
	DocRequestWholesaleSettlement    DocumentType = "RequestWholesaleSettlement_MarketDocument"
	DocNotifyWholesaleServices       DocumentType = "NotifyWholesaleServices_MarketDocument"
	DocRequestService                DocumentType = "RequestService_MarketDocument"
	DocUpdateCustomerCharacteristics DocumentType = "RequestUpdateCustomerCharacteristics_MarketDocument"
	DocAcknowledgement               DocumentType = "Acknowledgement_MarketDocument"
	DocRequestElectricalHeating      DocumentType = "RequestElectricalHeating_MarketDocument"
	DocRequestChargeInformation      DocumentType = "RequestUpdateChargeInformation_MarketDocument"
	DocNotifyChargeInformation       DocumentType = "NotifyChargeInformation_MarketDocument"
	DocNotifyChargePrices            DocumentType = "NotifyChargePrices_MarketDocument"
	DocNotifyChargeLinks             DocumentType = "NotifyChargeLinks_MarketDocument"
)

// Process type codes used in process.processType.
const (
	ProcessSupplierChange      = "E03"
	ProcessEndOfSupply         = "E20"
	ProcessMeteredData         = "E23"
	ProcessCustomerUpdate      = "E34"
	ProcessWholesaleSettlement = "D05"
	ProcessChargePrices        = "D08"
	ProcessChargeLinks         = "D17"
	ProcessChargeInformation   = "D18"
	ProcessElectricalHeating   = "D20"
)

// DocumentSpec ties a document name to its RSM schema and wire type code.
type DocumentSpec struct {
	Rsm      string
	TypeCode string
}

var registry = map[DocumentType]DocumentSpec{
	DocRequestChangeOfSupplier:       {Rsm: "RSM-001", TypeCode: "392"},
	DocConfirmChangeOfSupplier:       {Rsm: "RSM-001", TypeCode: "414"},
	DocRejectChangeOfSupplier:        {Rsm: "RSM-001", TypeCode: "414"},
	DocRequestEndOfSupply:            {Rsm: "RSM-003", TypeCode: "432"},
	DocNotifyMPCharacteristics:       {Rsm: "RSM-004", TypeCode: "E07"},
	DocRequestMPCharacteristics:      {Rsm: "RSM-005", TypeCode: "E58"},
	DocNotifyValidatedMeasureData:    {Rsm: "RSM-012", TypeCode: "E66"},
	DocRequestAggregatedMeasureData:  {Rsm: "RSM-014", TypeCode: "E74"},
	DocRequestValidatedMeasureData:   {Rsm: "RSM-015", TypeCode: "E73"},
	DocNotifyAggregatedMeasureData:   {Rsm: "RSM-016", TypeCode: "E31"},
	DocRequestWholesaleSettlement:    {Rsm: "RSM-017", TypeCode: "D21"},
	DocNotifyWholesaleServices:       {Rsm: "RSM-019", TypeCode: "D05"},
	DocRequestService:                {Rsm: "RSM-020", TypeCode: "D24"},
	DocUpdateCustomerCharacteristics: {Rsm: "RSM-022", TypeCode: "D15"},
	DocAcknowledgement:               {Rsm: "RSM-027", TypeCode: "294"},
	DocRequestElectricalHeating:      {Rsm: "RSM-031", TypeCode: "D30"},
	DocRequestChargeInformation:      {Rsm: "RSM-032", TypeCode: "D10"},
	DocNotifyChargeInformation:       {Rsm: "RSM-033", TypeCode: "D12"},
	DocNotifyChargePrices:            {Rsm: "RSM-034", TypeCode: "D08"},
	DocNotifyChargeLinks:             {Rsm: "RSM-035", TypeCode: "D17"},
}

// Spec resolves the schema entry for a document name.
func Spec(doc DocumentType) (DocumentSpec, error) {
	spec, ok := registry[doc]
	if !ok {
		return DocumentSpec{}, apperr.New(apperr.ErrValidation, "unknown market document %q", doc)
	}
	return spec, nil
}

// SupportedDocuments lists every registered document name.
func SupportedDocuments() []DocumentType {
	docs := make([]DocumentType, 0, len(registry))
	for doc := range registry {
		docs = append(docs, doc)
	}
	return docs
}
