// Package cim builds and parses the JSON market documents exchanged with
// DataHub. An envelope is a single top-level document name whose value holds
// the header fields and the MktActivityRecord transactions.
package cim

import (
	"time"

	"github.com/nordlux/elcore/pkg/apperr"
)

// TimeLayout is the wire format for every time value: UTC with trailing Z.
const TimeLayout = "2006-01-02T15:04:05Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, apperr.New(apperr.ErrValidation, "bad time value %q", s)
	}
	return t, nil
}

// CodingScheme qualifies an identifier on the wire.
type CodingScheme string

const (
	SchemeGln      CodingScheme = "A10"
	SchemeGridArea CodingScheme = "NDK"
	SchemeCpr      CodingScheme = "ARR"
	SchemeCvr      CodingScheme = "VA"
)

// ValueField wraps a plain coded value, e.g. {"value": "E03"}.
type ValueField struct {
	Value string `json:"value"`
}

// CodedField wraps an identifier with its coding scheme.
type CodedField struct {
	CodingScheme CodingScheme `json:"codingScheme"`
	Value        string       `json:"value"`
}

func Coded(scheme CodingScheme, value string) CodedField {
	return CodedField{CodingScheme: scheme, Value: value}
}

// Record is one MktActivityRecord transaction. Values are strings,
// ValueField, CodedField or nested Records; time values are pre-formatted
// with FormatTime.
type Record map[string]any

// Header carries the envelope fields shared by every market document.
type Header struct {
	MRID              string     `json:"mRID"`
	Type              ValueField `json:"type"`
	ProcessType       ValueField `json:"process.processType"`
	BusinessSector    ValueField `json:"businessSector.type"`
	Sender            CodedField `json:"sender_MarketParticipant.mRID"`
	SenderRole        ValueField `json:"sender_MarketParticipant.marketRole.type"`
	Receiver          CodedField `json:"receiver_MarketParticipant.mRID"`
	ReceiverRole      ValueField `json:"receiver_MarketParticipant.marketRole.type"`
	CreatedDateTime   string     `json:"createdDateTime"`
	MktActivityRecord []Record   `json:"MktActivityRecord"`
}

// Envelope is a parsed or built market document.
type Envelope struct {
	DocumentType DocumentType
	Header       Header
}

// ElectricityBusinessSector is the fixed businessSector.type for the Danish
// electricity market.
const ElectricityBusinessSector = "23"

// Market role codes.
const (
	RoleEnergySupplier = "DDQ"
	RoleDataHub        = "DDZ"
	RoleGridOperator   = "DDM"
)
