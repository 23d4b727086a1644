package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/cim"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	customerdomain "github.com/nordlux/elcore/internal/customer/domain"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/internal/process/domain"
	recondomain "github.com/nordlux/elcore/internal/reconciliation/domain"
	supplydomain "github.com/nordlux/elcore/internal/supply/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/marketid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	Cfg            config.Config
	Repo           domain.Repository
	Messaging      messagingdomain.Service
	MeteringPoints mpdomain.Service
	Customers      customerdomain.Service
	Supplies       supplydomain.Service
	Prices         pricedomain.Service
	TimeSeries     tsdomain.Service
	Reconciliation recondomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	supplierGln    string
	datahubGln     string
	repo           domain.Repository
	messaging      messagingdomain.Service
	meteringPoints mpdomain.Service
	customers      customerdomain.Service
	supplies       supplydomain.Service
	prices         pricedomain.Service
	timeSeries     tsdomain.Service
	reconciliation recondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("process.service"),
		clock:          p.Clock,
		supplierGln:    p.Cfg.SupplierGln,
		datahubGln:     p.Cfg.DatahubGln,
		repo:           p.Repo,
		messaging:      p.Messaging,
		meteringPoints: p.MeteringPoints,
		customers:      p.Customers,
		supplies:       p.Supplies,
		prices:         p.Prices,
		timeSeries:     p.TimeSeries,
		reconciliation: p.Reconciliation,
	}
}

func (s *Service) InitiateSupplierChange(ctx context.Context, req domain.InitiateSupplierChangeRequest) (domain.BrsProcess, error) {
	gsrn, err := marketid.NewGsrn(req.Gsrn)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if (req.Cpr == nil) == (req.Cvr == nil) {
		return domain.BrsProcess{}, apperr.New(apperr.ErrValidation, "exactly one of cpr and cvr must be set")
	}
	if _, err := s.meteringPoints.GetByGsrn(ctx, gsrn.String()); err != nil {
		return domain.BrsProcess{}, err
	}

	now := s.clock.Now().UTC()
	proc := s.newProcess(domain.BRS001, domain.RoleInitiator, now)
	g := gsrn.String()
	proc.Gsrn = &g
	effective := req.EffectiveDate.UTC()
	proc.EffectiveDate = &effective
	if req.PreviousSupplierGln != "" {
		proc.CounterpartGln = &req.PreviousSupplierGln
	}

	var customerRef cim.CodedField
	if req.Cpr != nil {
		customerRef = cim.Coded(cim.SchemeCpr, *req.Cpr)
	} else {
		customerRef = cim.Coded(cim.SchemeCvr, *req.Cvr)
	}
	payload, err := cim.Create(cim.DocRequestChangeOfSupplier, cim.ProcessSupplierChange, s.supplierGln).
		WithReceiver(s.datahubGln, cim.RoleDataHub).
		CreatedAt(now).
		AddSeries(cim.Record{
			"mRID":                       proc.ID.String(),
			"marketEvaluationPoint.mRID": cim.Coded(cim.SchemeGln, g),
			"customer.mRID":              customerRef,
			"start_DateAndOrTime":        effective,
		}).
		BuildJSON()
	if err != nil {
		return domain.BrsProcess{}, err
	}

	if err := s.enqueue(ctx, proc, cim.DocRequestChangeOfSupplier, payload); err != nil {
		return domain.BrsProcess{}, err
	}
	if err := s.repo.Insert(ctx, s.db, &proc); err != nil {
		return domain.BrsProcess{}, err
	}
	s.log.Info("supplier change initiated",
		zap.String("process_id", proc.ID.String()),
		zap.String("gsrn", g),
		zap.Time("effective_date", effective))
	return proc, nil
}

func (s *Service) HandleConfirmation(ctx context.Context, processID uuid.UUID, transactionID string) (domain.BrsProcess, error) {
	proc, err := s.mustFind(ctx, processID)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	now := s.clock.Now().UTC()
	var transitions []domain.ProcessTransition
	if proc.CurrentState == domain.StateCreated {
		tr, err := domain.Transition(proc, domain.StateSubmitted, "request submitted to DataHub", now)
		if err != nil {
			return domain.BrsProcess{}, err
		}
		transitions = append(transitions, tr)
	}
	proc.TransactionID = &transactionID
	tr, err := domain.Transition(proc, domain.StateConfirmed, "confirmed by DataHub", now)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	transitions = append(transitions, tr)
	if err := s.persist(ctx, proc, transitions); err != nil {
		return domain.BrsProcess{}, err
	}
	return *proc, nil
}

func (s *Service) HandleRejection(ctx context.Context, processID uuid.UUID, reason string) (domain.BrsProcess, error) {
	proc, err := s.mustFind(ctx, processID)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	now := s.clock.Now().UTC()
	var transitions []domain.ProcessTransition
	if proc.CurrentState == domain.StateCreated {
		tr, err := domain.Transition(proc, domain.StateSubmitted, "request submitted to DataHub", now)
		if err != nil {
			return domain.BrsProcess{}, err
		}
		transitions = append(transitions, tr)
	}
	tr, err := domain.Transition(proc, domain.StateRejected, reason, now)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	transitions = append(transitions, tr)
	proc.ErrorMessage = &reason
	if err := s.persist(ctx, proc, transitions); err != nil {
		return domain.BrsProcess{}, err
	}
	s.log.Warn("process rejected",
		zap.String("process_id", proc.ID.String()),
		zap.String("process_type", string(proc.ProcessType)),
		zap.String("reason", reason))
	return *proc, nil
}

func (s *Service) ExecuteSupplierChange(ctx context.Context, processID, customerID uuid.UUID) (domain.BrsProcess, error) {
	proc, err := s.mustFind(ctx, processID)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	spec, err := domain.Catalog(proc.ProcessType)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if spec.Shape != domain.ShapeBidirectional || proc.Role != domain.RoleInitiator {
		return domain.BrsProcess{}, apperr.New(apperr.ErrValidation,
			"process %s (%s) has no supply switch to execute", proc.ID, proc.ProcessType)
	}
	if proc.CurrentState != domain.StateConfirmed {
		return domain.BrsProcess{}, apperr.New(apperr.ErrConflict,
			"process %s must be confirmed before execution, is %s", proc.ID, proc.CurrentState)
	}
	if proc.Gsrn == nil || proc.EffectiveDate == nil {
		return domain.BrsProcess{}, apperr.New(apperr.ErrIntegrityViolation,
			"process %s misses gsrn or effective date", proc.ID)
	}

	mp, err := s.meteringPoints.GetByGsrn(ctx, *proc.Gsrn)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	effective := *proc.EffectiveDate

	current, err := s.supplies.ActiveAt(ctx, mp.ID, effective)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if current != nil {
		if _, err := s.supplies.End(ctx, current.ID, effective, &proc.ID); err != nil {
			return domain.BrsProcess{}, err
		}
	}
	if _, err := s.supplies.Create(ctx, supplydomain.CreateSupplyRequest{
		MeteringPointID: mp.ID,
		CustomerID:      customerID,
		Start:           effective,
	}); err != nil {
		return domain.BrsProcess{}, err
	}

	now := s.clock.Now().UTC()
	trActive, err := domain.Transition(proc, domain.StateActive, "supply switched at effective date", now)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	trDone, err := domain.Transition(proc, domain.StateCompleted, "supplier change effectuated", now)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if err := s.persist(ctx, proc, []domain.ProcessTransition{trActive, trDone}); err != nil {
		return domain.BrsProcess{}, err
	}
	s.log.Info("supplier change executed",
		zap.String("process_id", proc.ID.String()),
		zap.String("gsrn", *proc.Gsrn))
	return *proc, nil
}

func (s *Service) HandleSupplierChangeAsRecipient(ctx context.Context, req domain.RecipientChangeRequest) (domain.BrsProcess, error) {
	spec, err := domain.Catalog(req.ProcessType)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if spec.Shape != domain.ShapeBidirectional {
		return domain.BrsProcess{}, apperr.New(apperr.ErrValidation,
			"%s has no recipient arm", req.ProcessType)
	}
	mp, err := s.meteringPoints.GetByGsrn(ctx, req.Gsrn)
	if err != nil {
		return domain.BrsProcess{}, err
	}

	now := s.clock.Now().UTC()
	proc := s.newProcess(req.ProcessType, domain.RoleRecipient, now)
	proc.Gsrn = &req.Gsrn
	effective := req.EffectiveDate.UTC()
	proc.EffectiveDate = &effective
	proc.TransactionID = req.TransactionID
	if req.CounterpartGln != "" {
		proc.CounterpartGln = &req.CounterpartGln
	}

	transitions := make([]domain.ProcessTransition, 0, 4)
	for _, step := range []struct {
		to     domain.ProcessState
		reason string
	}{
		{domain.StateAcknowledged, "inbound request acknowledged"},
		{domain.StateAwaitingEffectiveDate, "awaiting effective date"},
	} {
		tr, err := domain.Transition(&proc, step.to, step.reason, now)
		if err != nil {
			return domain.BrsProcess{}, err
		}
		transitions = append(transitions, tr)
	}

	current, err := s.supplies.ActiveAt(ctx, mp.ID, effective)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if current != nil {
		if _, err := s.supplies.End(ctx, current.ID, effective, &proc.ID); err != nil {
			return domain.BrsProcess{}, err
		}
	}

	for _, step := range []struct {
		to     domain.ProcessState
		reason string
	}{
		{domain.StateFinalSettlement, "supply ended, final settlement pending"},
		{domain.StateCompleted, "handed over to the new supplier"},
	} {
		tr, err := domain.Transition(&proc, step.to, step.reason, now)
		if err != nil {
			return domain.BrsProcess{}, err
		}
		transitions = append(transitions, tr)
	}

	if err := s.insert(ctx, &proc, transitions); err != nil {
		return domain.BrsProcess{}, err
	}
	s.log.Info("supplier change handled as recipient",
		zap.String("process_id", proc.ID.String()),
		zap.String("gsrn", req.Gsrn))
	return proc, nil
}

func (s *Service) InitiateRequest(ctx context.Context, input domain.InitiateRequestInput) (domain.BrsProcess, error) {
	spec, err := domain.Catalog(input.ProcessType)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if spec.Shape != domain.ShapeRequestResponse {
		return domain.BrsProcess{}, apperr.New(apperr.ErrValidation,
			"%s is not a request/response process", input.ProcessType)
	}
	return s.submitRequest(ctx, input, spec)
}

func (s *Service) InitiateReversal(ctx context.Context, req domain.InitiateReversalRequest) (domain.BrsProcess, error) {
	if req.ProcessType != domain.BRS003 && req.ProcessType != domain.BRS011 {
		return domain.BrsProcess{}, apperr.New(apperr.ErrValidation,
			"%s is not a reversal process", req.ProcessType)
	}
	now := s.clock.Now().UTC()
	if now.Sub(req.EffectiveDate) > domain.CorrectionWindow {
		return domain.BrsProcess{}, apperr.New(apperr.ErrPreconditionFailed,
			"effective date %s is outside the 60 day correction window", req.EffectiveDate.Format("2006-01-02"))
	}
	spec, err := domain.Catalog(req.ProcessType)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	gsrn := req.Gsrn
	effective := req.EffectiveDate
	return s.submitRequest(ctx, domain.InitiateRequestInput{
		ProcessType:   req.ProcessType,
		Gsrn:          &gsrn,
		EffectiveDate: &effective,
		Fields:        cim.Record{"reason.text": req.Reason},
	}, spec)
}

// submitRequest creates the process, enqueues its document and leaves the
// process Submitted.
func (s *Service) submitRequest(ctx context.Context, input domain.InitiateRequestInput, spec domain.ProcessSpec) (domain.BrsProcess, error) {
	now := s.clock.Now().UTC()
	proc := s.newProcess(input.ProcessType, domain.RoleInitiator, now)
	proc.Gsrn = input.Gsrn
	if input.EffectiveDate != nil {
		effective := input.EffectiveDate.UTC()
		proc.EffectiveDate = &effective
	}

	record := cim.Record{"mRID": proc.ID.String()}
	if input.Gsrn != nil {
		record["marketEvaluationPoint.mRID"] = cim.Coded(cim.SchemeGln, *input.Gsrn)
	}
	if proc.EffectiveDate != nil {
		record["start_DateAndOrTime"] = *proc.EffectiveDate
	}
	for key, value := range input.Fields {
		record[key] = value
	}

	payload, err := cim.Create(spec.Document, spec.ProcessCode, s.supplierGln).
		WithReceiver(s.datahubGln, cim.RoleDataHub).
		CreatedAt(now).
		AddSeries(record).
		BuildJSON()
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if err := s.enqueue(ctx, proc, spec.Document, payload); err != nil {
		return domain.BrsProcess{}, err
	}

	tr, err := domain.Transition(&proc, domain.StateSubmitted, "request submitted to DataHub", now)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if err := s.insert(ctx, &proc, []domain.ProcessTransition{tr}); err != nil {
		return domain.BrsProcess{}, err
	}
	return proc, nil
}

func (s *Service) HandleDataReceived(ctx context.Context, processID uuid.UUID) (domain.BrsProcess, error) {
	return s.transitionOne(ctx, processID, domain.StateDataReceived, "data payload received")
}

func (s *Service) Complete(ctx context.Context, processID uuid.UUID, reason string) (domain.BrsProcess, error) {
	return s.transitionOne(ctx, processID, domain.StateCompleted, reason)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.ProcessWithTransitions, error) {
	proc, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.ProcessWithTransitions{}, err
	}
	transitions, err := s.repo.FindTransitions(ctx, s.db, id)
	if err != nil {
		return domain.ProcessWithTransitions{}, err
	}
	return domain.ProcessWithTransitions{Process: *proc, Transitions: transitions}, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.BrsProcess, error) {
	return s.repo.FindMany(ctx, s.db, filter)
}

func (s *Service) newProcess(pt domain.ProcessType, role domain.ProcessRole, now time.Time) domain.BrsProcess {
	return domain.BrsProcess{
		ID:           uuid.New(),
		ProcessType:  pt,
		Role:         role,
		CurrentState: domain.StateCreated,
		Status:       domain.StatusPending,
		StartedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) enqueue(ctx context.Context, proc domain.BrsProcess, doc cim.DocumentType, payload []byte) error {
	_, err := s.messaging.Enqueue(ctx, messagingdomain.EnqueueRequest{
		DocumentType:    string(doc),
		BusinessProcess: string(proc.ProcessType),
		Payload:         payload,
	})
	return err
}

func (s *Service) transitionOne(ctx context.Context, processID uuid.UUID, to domain.ProcessState, reason string) (domain.BrsProcess, error) {
	proc, err := s.mustFind(ctx, processID)
	if err != nil {
		return domain.BrsProcess{}, err
	}
	tr, err := domain.Transition(proc, to, reason, s.clock.Now().UTC())
	if err != nil {
		return domain.BrsProcess{}, err
	}
	if err := s.persist(ctx, proc, []domain.ProcessTransition{tr}); err != nil {
		return domain.BrsProcess{}, err
	}
	return *proc, nil
}

func (s *Service) insert(ctx context.Context, proc *domain.BrsProcess, transitions []domain.ProcessTransition) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, proc); err != nil {
			return err
		}
		return s.repo.InsertTransitions(ctx, tx, transitions)
	})
}

func (s *Service) persist(ctx context.Context, proc *domain.BrsProcess, transitions []domain.ProcessTransition) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, proc); err != nil {
			return err
		}
		return s.repo.InsertTransitions(ctx, tx, transitions)
	})
}

func (s *Service) mustFind(ctx context.Context, id uuid.UUID) (*domain.BrsProcess, error) {
	proc, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if proc == nil {
		return nil, apperr.New(apperr.ErrNotFound, "process %s not found", id)
	}
	return proc, nil
}
