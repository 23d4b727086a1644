package cim

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/apperr"
)

// Builder assembles an envelope field by field. Errors are collected and
// surfaced once at Build so call sites can chain freely.
type Builder struct {
	env Envelope
	err error
}

// Create starts a document of the given type. The sender defaults to the
// energy supplier role and the receiver to DataHub; override with
// WithReceiver where a process addresses a grid operator.
func Create(doc DocumentType, processCode, senderGln string) *Builder {
	b := &Builder{}
	spec, err := Spec(doc)
	if err != nil {
		b.err = err
		return b
	}
	b.env = Envelope{
		DocumentType: doc,
		Header: Header{
			MRID:           uuid.NewString(),
			Type:           ValueField{Value: spec.TypeCode},
			ProcessType:    ValueField{Value: processCode},
			BusinessSector: ValueField{Value: ElectricityBusinessSector},
			Sender:         Coded(SchemeGln, senderGln),
			SenderRole:     ValueField{Value: RoleEnergySupplier},
			ReceiverRole:   ValueField{Value: RoleDataHub},
		},
	}
	return b
}

func (b *Builder) WithMRID(mrid string) *Builder {
	b.env.Header.MRID = mrid
	return b
}

func (b *Builder) WithReceiver(gln, role string) *Builder {
	b.env.Header.Receiver = Coded(SchemeGln, gln)
	b.env.Header.ReceiverRole = ValueField{Value: role}
	return b
}

func (b *Builder) WithSenderRole(role string) *Builder {
	b.env.Header.SenderRole = ValueField{Value: role}
	return b
}

func (b *Builder) CreatedAt(t time.Time) *Builder {
	b.env.Header.CreatedDateTime = FormatTime(t)
	return b
}

// AddSeries appends one MktActivityRecord. time.Time values are formatted to
// the wire layout; other values pass through as given.
func (b *Builder) AddSeries(fields Record) *Builder {
	if b.err != nil {
		return b
	}
	record := make(Record, len(fields))
	for key, value := range fields {
		if t, ok := value.(time.Time); ok {
			record[key] = FormatTime(t)
			continue
		}
		record[key] = value
	}
	b.env.Header.MktActivityRecord = append(b.env.Header.MktActivityRecord, record)
	return b
}

func (b *Builder) Build() (Envelope, error) {
	if b.err != nil {
		return Envelope{}, b.err
	}
	if b.env.Header.CreatedDateTime == "" {
		return Envelope{}, apperr.New(apperr.ErrValidation, "createdDateTime is required")
	}
	if b.env.Header.Receiver.Value == "" {
		return Envelope{}, apperr.New(apperr.ErrValidation, "receiver is required")
	}
	if len(b.env.Header.MktActivityRecord) == 0 {
		return Envelope{}, apperr.New(apperr.ErrValidation, "document %s has no transactions", b.env.DocumentType)
	}
	return b.env, nil
}

// BuildJSON builds and serialises the envelope in one step.
func (b *Builder) BuildJSON() ([]byte, error) {
	env, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Marshal(env)
}

// Marshal serialises an envelope to its wire form.
func Marshal(env Envelope) ([]byte, error) {
	if _, err := Spec(env.DocumentType); err != nil {
		return nil, err
	}
	return json.Marshal(map[DocumentType]Header{env.DocumentType: env.Header})
}
