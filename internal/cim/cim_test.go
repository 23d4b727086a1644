package cim

import (
	"testing"
	"time"

	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSupplierGln = "5790002502699"
	testDatahubGln  = "5790001330552"
)

var testCreatedAt = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func TestBuildSupplierChangeRequest(t *testing.T) {
	effective := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	env, err := Create(DocRequestChangeOfSupplier, ProcessSupplierChange, testSupplierGln).
		WithReceiver(testDatahubGln, RoleDataHub).
		CreatedAt(testCreatedAt).
		AddSeries(Record{
			"mRID":                    "TX-0001",
			"marketEvaluationPoint.mRID": Coded(SchemeGln, "571313180400013562"),
			"customer.mRID":           Coded(SchemeCpr, "0101901234"),
			"start_DateAndOrTime":     effective,
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, DocRequestChangeOfSupplier, env.DocumentType)
	assert.Equal(t, "392", env.Header.Type.Value)
	assert.Equal(t, "E03", env.Header.ProcessType.Value)
	assert.Equal(t, "23", env.Header.BusinessSector.Value)
	assert.Equal(t, SchemeGln, env.Header.Sender.CodingScheme)
	assert.Equal(t, "DDQ", env.Header.SenderRole.Value)
	assert.Equal(t, "DDZ", env.Header.ReceiverRole.Value)
	assert.Equal(t, "2026-01-15T09:30:00Z", env.Header.CreatedDateTime)
	require.Len(t, env.Header.MktActivityRecord, 1)
	assert.Equal(t, "2026-03-01T00:00:00Z", env.Header.MktActivityRecord[0]["start_DateAndOrTime"])
}

func TestBuildRejectsIncompleteDocuments(t *testing.T) {
	_, err := Create(DocumentType("Bogus_MarketDocument"), "E03", testSupplierGln).
		WithReceiver(testDatahubGln, RoleDataHub).
		CreatedAt(testCreatedAt).
		AddSeries(Record{"mRID": "TX-1"}).
		Build()
	assert.True(t, apperr.IsValidation(err))

	_, err = Create(DocRequestEndOfSupply, ProcessEndOfSupply, testSupplierGln).
		WithReceiver(testDatahubGln, RoleDataHub).
		CreatedAt(testCreatedAt).
		Build()
	assert.True(t, apperr.IsValidation(err), "a document needs at least one transaction")

	_, err = Create(DocRequestEndOfSupply, ProcessEndOfSupply, testSupplierGln).
		WithReceiver(testDatahubGln, RoleDataHub).
		AddSeries(Record{"mRID": "TX-1"}).
		Build()
	assert.True(t, apperr.IsValidation(err), "createdDateTime is mandatory")
}

func TestRoundTripAllSupportedDocuments(t *testing.T) {
	for _, doc := range SupportedDocuments() {
		spec, err := Spec(doc)
		require.NoError(t, err)

		data, err := Create(doc, ProcessSupplierChange, testSupplierGln).
			WithMRID("DOC-" + spec.Rsm).
			WithReceiver(testDatahubGln, RoleDataHub).
			CreatedAt(testCreatedAt).
			AddSeries(Record{
				"mRID":                       "TX-1",
				"marketEvaluationPoint.mRID": Coded(SchemeGln, "571313180400013562"),
				"meteringGridArea_Domain.mRID": Coded(SchemeGridArea, "344"),
			}).
			BuildJSON()
		require.NoError(t, err, "building %s", doc)

		parsed, err := Parse(data)
		require.NoError(t, err, "parsing %s", doc)

		assert.Equal(t, doc, parsed.DocumentType)
		assert.Equal(t, "DOC-"+spec.Rsm, parsed.Header.MRID)
		assert.Equal(t, spec.TypeCode, parsed.Header.Type.Value)
		assert.Equal(t, testSupplierGln, parsed.Header.Sender.Value)
		assert.Equal(t, "2026-01-15T09:30:00Z", parsed.Header.CreatedDateTime)
		require.Len(t, parsed.Header.MktActivityRecord, 1)
		record := parsed.Header.MktActivityRecord[0]
		assert.Equal(t, "TX-1", RecordString(record, "mRID"))
		assert.Equal(t, "571313180400013562", RecordString(record, "marketEvaluationPoint.mRID"))
		assert.Equal(t, "344", RecordString(record, "meteringGridArea_Domain.mRID"))
	}
}

func TestParseRejectsBadEnvelopes(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	assert.True(t, apperr.IsValidation(err))

	_, err = Parse([]byte(`{"A_MarketDocument":{},"B_MarketDocument":{}}`))
	assert.True(t, apperr.IsValidation(err), "multiple top-level documents")

	_, err = Parse([]byte(`{"Unknown_MarketDocument":{"mRID":"X"}}`))
	assert.True(t, apperr.IsValidation(err))

	_, err = Parse([]byte(`{"RequestChangeOfSupplier_MarketDocument":{"createdDateTime":"2026-01-15T09:30:00Z"}}`))
	assert.True(t, apperr.IsValidation(err), "mRID is mandatory")

	_, err = Parse([]byte(`{"RequestChangeOfSupplier_MarketDocument":{"mRID":"X","createdDateTime":"15/01/2026"}}`))
	assert.True(t, apperr.IsValidation(err), "non-UTC time layout")
}

func TestParseIgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{
		"NotifyValidatedMeasureData_MarketDocument": {
			"mRID": "HUB-1",
			"type": {"value": "E66"},
			"process.processType": {"value": "E23"},
			"sender_MarketParticipant.mRID": {"codingScheme": "A10", "value": "5790001330552"},
			"createdDateTime": "2026-01-15T09:30:00Z",
			"future.extension": {"value": "whatever"},
			"MktActivityRecord": [{"mRID": "TX-9", "quality": "A04"}]
		}
	}`)
	env, err := Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, DocNotifyValidatedMeasureData, env.DocumentType)
	assert.Equal(t, "E23", env.Header.ProcessType.Value)
	assert.Equal(t, "A04", RecordString(env.Header.MktActivityRecord[0], "quality"))
}
