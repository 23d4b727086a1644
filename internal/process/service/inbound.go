package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/cim"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/internal/process/domain"
	recondomain "github.com/nordlux/elcore/internal/reconciliation/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HandleInbound routes one inbox envelope. Confirm/reject documents resolve
// against the initiating process; everything else dispatches on the BRS
// number the hub stamped on the message.
func (s *Service) HandleInbound(ctx context.Context, msg messagingdomain.InboxMessage) error {
	env, err := cim.Parse(msg.Payload)
	if err != nil {
		return err
	}

	switch env.DocumentType {
	case cim.DocConfirmChangeOfSupplier:
		return s.applyResponse(ctx, env, true)
	case cim.DocRejectChangeOfSupplier:
		return s.applyResponse(ctx, env, false)
	case cim.DocAcknowledgement:
		return s.applyResponse(ctx, env, true)
	}

	pt := domain.ProcessType(msg.BusinessProcess)
	spec, err := domain.Catalog(pt)
	if err != nil {
		return err
	}

	switch pt {
	case domain.BRS001, domain.BRS009, domain.BRS044, domain.BRS003, domain.BRS011:
		return s.applyRecipientChange(ctx, pt, env, msg.SenderGln)
	case domain.BRS021:
		return s.applyMeasureData(ctx, env)
	case domain.BRS004:
		return s.applyNewMeteringPoint(ctx, env, msg.SenderGln)
	case domain.BRS006:
		return s.applyMasterDataUpdate(ctx, env)
	case domain.BRS007:
		return s.applyConnectionState(ctx, pt, env, mpdomain.StateClosedDown)
	case domain.BRS008:
		return s.applyConnectionState(ctx, pt, env, mpdomain.StateConnected)
	case domain.BRS013:
		return s.applyDisconnectReconnect(ctx, env)
	case domain.BRS031:
		return s.applyPriceData(ctx, env, msg.SenderGln)
	case domain.BRS027:
		return s.applyWholesaleSettlement(ctx, env, msg)
	case domain.BRS036:
		return s.applyChargeLinks(ctx, pt, env, msg.SenderGln)
	}

	if spec.Shape == domain.ShapeRequestResponse {
		return s.applyDataResponse(ctx, env)
	}
	return apperr.New(apperr.ErrValidation, "no inbound handler for %s", pt)
}

// applyResponse resolves the confirm/reject against the process whose id we
// put in the outbound transaction mRID.
func (s *Service) applyResponse(ctx context.Context, env cim.Envelope, accepted bool) error {
	for _, record := range env.Header.MktActivityRecord {
		ref := cim.RecordString(record, "originalTransactionIDReference_MktActivityRecord.mRID")
		processID, err := uuid.Parse(ref)
		if err != nil {
			return apperr.New(apperr.ErrValidation, "bad transaction reference %q", ref)
		}
		if accepted {
			if _, err := s.HandleConfirmation(ctx, processID, cim.RecordString(record, "mRID")); err != nil {
				return err
			}
			continue
		}
		reason := cim.RecordString(record, "reason.text")
		if reason == "" {
			reason = cim.RecordString(record, "reason.code")
		}
		if _, err := s.HandleRejection(ctx, processID, reason); err != nil {
			return err
		}
	}
	return nil
}

// applyDataResponse closes the request/response loop for processes whose
// payload needs no further domain effect.
func (s *Service) applyDataResponse(ctx context.Context, env cim.Envelope) error {
	for _, record := range env.Header.MktActivityRecord {
		ref := cim.RecordString(record, "originalTransactionIDReference_MktActivityRecord.mRID")
		processID, err := uuid.Parse(ref)
		if err != nil {
			return apperr.New(apperr.ErrValidation, "bad transaction reference %q", ref)
		}
		if _, err := s.HandleDataReceived(ctx, processID); err != nil {
			return err
		}
		if _, err := s.Complete(ctx, processID, "data response processed"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyRecipientChange(ctx context.Context, pt domain.ProcessType, env cim.Envelope, senderGln string) error {
	for _, record := range env.Header.MktActivityRecord {
		effective, err := cim.RecordTime(record, "start_DateAndOrTime")
		if err != nil {
			return err
		}
		txID := cim.RecordString(record, "mRID")
		req := domain.RecipientChangeRequest{
			ProcessType:    pt,
			Gsrn:           cim.RecordString(record, "marketEvaluationPoint.mRID"),
			EffectiveDate:  effective,
			CounterpartGln: senderGln,
		}
		if txID != "" {
			req.TransactionID = &txID
		}
		if _, err := s.HandleSupplierChangeAsRecipient(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyMeasureData(ctx context.Context, env cim.Envelope) error {
	for _, record := range env.Header.MktActivityRecord {
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		mp, err := s.meteringPoints.GetByGsrn(ctx, gsrn)
		if err != nil {
			return err
		}
		start, err := cim.RecordTime(record, "start_DateAndOrTime")
		if err != nil {
			return err
		}
		end, err := cim.RecordTime(record, "end_DateAndOrTime")
		if err != nil {
			return err
		}
		p, err := period.Closed(start, end)
		if err != nil {
			return err
		}
		resolution := market.Resolution(cim.RecordString(record, "resolution"))
		if err := resolution.Validate(); err != nil {
			return err
		}

		points := recordList(record, "Point")
		observations := make([]tsdomain.ObservationInput, 0, len(points))
		for _, point := range points {
			position, err := recordInt(point, "position")
			if err != nil {
				return err
			}
			quantity, err := recordDecimal(point, "quantity")
			if err != nil {
				return err
			}
			observations = append(observations, tsdomain.ObservationInput{
				Timestamp: start.Add(time.Duration(position-1) * resolution.Duration()),
				Quantity:  quantity,
				Quality:   qualityFromCode(cim.RecordString(point, "quality")),
			})
		}

		req := tsdomain.IngestRequest{
			MeteringPointID: mp.ID,
			Period:          p,
			Resolution:      resolution,
			Observations:    observations,
		}
		if txID := cim.RecordString(record, "mRID"); txID != "" {
			req.TransactionID = &txID
		}
		result, err := s.timeSeries.Ingest(ctx, req)
		if err != nil {
			return err
		}
		s.log.Info("metered data ingested",
			zap.String("gsrn", gsrn),
			zap.Int("version", result.Series.Version),
			zap.Int("observations", len(observations)))

		// A data series answering one of our requests also closes that
		// request's process.
		if ref := cim.RecordString(record, "originalTransactionIDReference_MktActivityRecord.mRID"); ref != "" {
			if processID, err := uuid.Parse(ref); err == nil {
				if _, err := s.HandleDataReceived(ctx, processID); err != nil {
					return err
				}
				if _, err := s.Complete(ctx, processID, "metered data received"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Service) applyNewMeteringPoint(ctx context.Context, env cim.Envelope, senderGln string) error {
	for _, record := range env.Header.MktActivityRecord {
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		gridCompany := cim.RecordString(record, "meterResponsible_MarketParticipant.mRID")
		if gridCompany == "" {
			gridCompany = senderGln
		}
		priceArea := market.PriceArea(cim.RecordString(record, "biddingZone_Domain.mRID"))
		if priceArea == "" {
			priceArea = market.PriceAreaDK1
		}
		_, err := s.meteringPoints.Create(ctx, mpdomain.CreateMeteringPointRequest{
			Gsrn:             gsrn,
			Type:             mpdomain.MeteringPointType(cim.RecordString(record, "marketEvaluationPoint.type")),
			Category:         mpdomain.CategoryParent,
			SettlementMethod: mpdomain.SettlementMethod(cim.RecordString(record, "settlementMethod")),
			Resolution:       market.Resolution(cim.RecordString(record, "resolution")),
			GridArea:         cim.RecordString(record, "meteringGridArea_Domain.mRID"),
			PriceArea:        priceArea,
			GridCompanyGln:   gridCompany,
		})
		if err != nil {
			return err
		}
		if err := s.recordRecipientRun(ctx, domain.BRS004, gsrn, record, "metering point created"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyMasterDataUpdate(ctx context.Context, env cim.Envelope) error {
	for _, record := range env.Header.MktActivityRecord {
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		req := mpdomain.UpdateMasterDataRequest{Gsrn: gsrn}
		if v := cim.RecordString(record, "settlementMethod"); v != "" {
			method := mpdomain.SettlementMethod(v)
			req.SettlementMethod = &method
		}
		if v := cim.RecordString(record, "resolution"); v != "" {
			resolution := market.Resolution(v)
			req.Resolution = &resolution
		}
		if v := cim.RecordString(record, "meteringGridArea_Domain.mRID"); v != "" {
			req.GridArea = &v
		}
		if v := cim.RecordString(record, "meterResponsible_MarketParticipant.mRID"); v != "" {
			req.GridCompanyGln = &v
		}
		if _, err := s.meteringPoints.UpdateMasterData(ctx, req); err != nil {
			return err
		}
		if err := s.recordRecipientRun(ctx, domain.BRS006, gsrn, record, "master data updated"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyConnectionState(ctx context.Context, pt domain.ProcessType, env cim.Envelope, state mpdomain.ConnectionState) error {
	for _, record := range env.Header.MktActivityRecord {
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		if _, err := s.meteringPoints.SetConnectionState(ctx, gsrn, state); err != nil {
			return err
		}
		if err := s.recordRecipientRun(ctx, pt, gsrn, record, "connection state set to "+string(state)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyDisconnectReconnect(ctx context.Context, env cim.Envelope) error {
	for _, record := range env.Header.MktActivityRecord {
		state := mpdomain.StateConnected
		if strings.EqualFold(cim.RecordString(record, "connectionState"), string(mpdomain.StateDisconnected)) {
			state = mpdomain.StateDisconnected
		}
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		if _, err := s.meteringPoints.SetConnectionState(ctx, gsrn, state); err != nil {
			return err
		}
		if err := s.recordRecipientRun(ctx, domain.BRS013, gsrn, record, "connection state set to "+string(state)); err != nil {
			return err
		}
	}
	return nil
}

// applyPriceData handles BRS-031 in its three flavours: D18 charge
// information, D08 price points, D17 charge links.
func (s *Service) applyPriceData(ctx context.Context, env cim.Envelope, senderGln string) error {
	switch env.Header.ProcessType.Value {
	case cim.ProcessChargeInformation:
		return s.applyChargeInformation(ctx, env, senderGln)
	case cim.ProcessChargePrices:
		return s.applyChargePrices(ctx, env, senderGln)
	case cim.ProcessChargeLinks:
		return s.applyChargeLinks(ctx, domain.BRS031, env, senderGln)
	}
	return apperr.New(apperr.ErrValidation, "unknown price data process code %q", env.Header.ProcessType.Value)
}

func (s *Service) applyChargeInformation(ctx context.Context, env cim.Envelope, senderGln string) error {
	for _, record := range env.Header.MktActivityRecord {
		chargeID := cim.RecordString(record, "chargeType.mRID")
		owner := cim.RecordString(record, "chargeTypeOwner_MarketParticipant.mRID")
		if owner == "" {
			owner = senderGln
		}
		description := cim.RecordString(record, "chargeType.description")

		existing, err := s.prices.GetByChargeID(ctx, chargeID, owner)
		if err != nil && !apperr.IsNotFound(err) {
			return err
		}
		if apperr.IsNotFound(err) {
			start, err := cim.RecordTime(record, "start_DateAndOrTime")
			if err != nil {
				return err
			}
			validity := period.Open(start)
			req := pricedomain.CreatePriceRequest{
				ChargeID:      chargeID,
				OwnerGln:      owner,
				Type:          chargeTypeFromCode(cim.RecordString(record, "chargeType.type")),
				Description:   description,
				Validity:      validity,
				VatExempt:     cim.RecordString(record, "chargeType.vatClass") == "D01",
				IsTax:         cim.RecordString(record, "chargeType.taxIndicator") == "true",
				IsPassThrough: true,
				Category:      categoryForDescription(description),
			}
			if v := cim.RecordString(record, "resolution"); v != "" {
				resolution := market.Resolution(v)
				req.Resolution = &resolution
			}
			if _, err := s.prices.Create(ctx, req); err != nil {
				return err
			}
		} else {
			update := pricedomain.UpdatePriceInfoRequest{PriceID: existing.ID}
			if description != "" {
				update.Description = &description
			}
			if _, err := s.prices.UpdatePriceInfo(ctx, update); err != nil {
				return err
			}
		}
		if err := s.recordRecipientRun(ctx, domain.BRS031, "", record, "charge information applied: "+chargeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyChargePrices(ctx context.Context, env cim.Envelope, senderGln string) error {
	for _, record := range env.Header.MktActivityRecord {
		chargeID := cim.RecordString(record, "chargeType.mRID")
		owner := cim.RecordString(record, "chargeTypeOwner_MarketParticipant.mRID")
		if owner == "" {
			owner = senderGln
		}
		price, err := s.prices.GetByChargeID(ctx, chargeID, owner)
		if err != nil {
			return err
		}
		start, err := cim.RecordTime(record, "start_DateAndOrTime")
		if err != nil {
			return err
		}
		end, err := cim.RecordTime(record, "end_DateAndOrTime")
		if err != nil {
			return err
		}
		resolution := market.Resolution(cim.RecordString(record, "resolution"))
		if resolution == "" {
			resolution = market.ResolutionPT1H
		}

		points := recordList(record, "Point")
		upserts := make([]pricedomain.PointUpsert, 0, len(points))
		for _, point := range points {
			position, err := recordInt(point, "position")
			if err != nil {
				return err
			}
			value, err := recordDecimal(point, "price.amount")
			if err != nil {
				return err
			}
			upserts = append(upserts, pricedomain.PointUpsert{
				Timestamp: start.Add(time.Duration(position-1) * resolution.Duration()),
				Price:     value,
			})
		}
		written, err := s.prices.ReplacePricePoints(ctx, price.ID, start, end, upserts)
		if err != nil {
			return err
		}
		s.log.Info("price points replaced",
			zap.String("charge_id", chargeID),
			zap.Int("points", written))
		if err := s.recordRecipientRun(ctx, domain.BRS031, "", record, "price points replaced: "+chargeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyChargeLinks(ctx context.Context, pt domain.ProcessType, env cim.Envelope, senderGln string) error {
	for _, record := range env.Header.MktActivityRecord {
		gsrn := cim.RecordString(record, "marketEvaluationPoint.mRID")
		mp, err := s.meteringPoints.GetByGsrn(ctx, gsrn)
		if err != nil {
			return err
		}
		chargeID := cim.RecordString(record, "chargeType.mRID")
		owner := cim.RecordString(record, "chargeTypeOwner_MarketParticipant.mRID")
		if owner == "" {
			owner = senderGln
		}
		price, err := s.prices.GetByChargeID(ctx, chargeID, owner)
		if err != nil {
			return err
		}
		start, err := cim.RecordTime(record, "start_DateAndOrTime")
		if err != nil {
			return err
		}
		req := pricedomain.CreateLinkRequest{
			MeteringPointID: mp.ID,
			PriceID:         price.ID,
			Start:           start,
		}
		if end, err := cim.RecordTime(record, "end_DateAndOrTime"); err == nil {
			req.End = &end
		}
		if _, err := s.prices.CreateLink(ctx, req); err != nil {
			return err
		}
		if err := s.recordRecipientRun(ctx, pt, gsrn, record, "charge link created: "+chargeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyWholesaleSettlement(ctx context.Context, env cim.Envelope, msg messagingdomain.InboxMessage) error {
	records := env.Header.MktActivityRecord
	if len(records) == 0 {
		return apperr.New(apperr.ErrValidation, "wholesale settlement without records")
	}
	start, err := cim.RecordTime(records[0], "start_DateAndOrTime")
	if err != nil {
		return err
	}
	end, err := cim.RecordTime(records[0], "end_DateAndOrTime")
	if err != nil {
		return err
	}
	p, err := period.Closed(start, end)
	if err != nil {
		return err
	}

	lines := make([]recondomain.WholesaleLineInput, 0, len(records))
	for _, record := range records {
		quantity, err := recordDecimal(record, "energySum")
		if err != nil {
			return err
		}
		amount, err := recordDecimal(record, "amount_Sum")
		if err != nil {
			return err
		}
		line := recondomain.WholesaleLineInput{
			Description: cim.RecordString(record, "chargeType.description"),
			Quantity:    quantity,
			Amount:      amount,
		}
		if chargeID := cim.RecordString(record, "chargeType.mRID"); chargeID != "" {
			line.ChargeID = &chargeID
			if line.Description == "" {
				line.Description = chargeID
			}
		}
		lines = append(lines, line)
	}

	processRef := env.Header.MRID
	_, err = s.reconciliation.IngestWholesale(ctx, recondomain.IngestWholesaleRequest{
		GridArea:         cim.RecordString(records[0], "meteringGridArea_Domain.mRID"),
		Period:           p,
		CounterpartGln:   msg.SenderGln,
		ProcessReference: &processRef,
		ReceivedAt:       msg.ReceivedAt,
		Lines:            lines,
	})
	if err != nil {
		return err
	}

	if ref := cim.RecordString(records[0], "originalTransactionIDReference_MktActivityRecord.mRID"); ref != "" {
		if processID, err := uuid.Parse(ref); err == nil {
			if _, err := s.HandleDataReceived(ctx, processID); err != nil {
				return err
			}
			if _, err := s.Complete(ctx, processID, "wholesale settlement received"); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordRecipientRun logs an applied inbound mutation as a completed
// recipient process so the transition history is queryable per GSRN.
func (s *Service) recordRecipientRun(ctx context.Context, pt domain.ProcessType, gsrn string, record cim.Record, reason string) error {
	now := s.clock.Now().UTC()
	proc := s.newProcess(pt, domain.RoleRecipient, now)
	if gsrn != "" {
		proc.Gsrn = &gsrn
	}
	if txID := cim.RecordString(record, "mRID"); txID != "" {
		proc.TransactionID = &txID
	}

	transitions := make([]domain.ProcessTransition, 0, 2)
	for _, step := range []struct {
		to     domain.ProcessState
		reason string
	}{
		{domain.StateAcknowledged, "inbound document acknowledged"},
		{domain.StateCompleted, reason},
	} {
		tr, err := domain.Transition(&proc, step.to, step.reason, now)
		if err != nil {
			return err
		}
		transitions = append(transitions, tr)
	}
	return s.insert(ctx, &proc, transitions)
}

func qualityFromCode(code string) market.QuantityQuality {
	switch code {
	case "A04":
		return market.QualityMeasured
	case "A03":
		return market.QualityEstimated
	case "A01":
		return market.QualityCalculated
	case "A02":
		return market.QualityMissing
	}
	return market.QuantityQuality(code)
}

func chargeTypeFromCode(code string) pricedomain.PriceType {
	switch code {
	case "D01":
		return pricedomain.Subscription
	case "D02":
		return pricedomain.Fee
	case "D03":
		return pricedomain.Tariff
	}
	return pricedomain.PriceType(code)
}

// categoryForDescription buckets a charge by its Danish description so the
// settlement validator can check category coverage on hub-created prices.
func categoryForDescription(description string) pricedomain.PriceCategory {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "spot"):
		return pricedomain.CategorySpotPris
	case strings.Contains(lower, "transmission"):
		return pricedomain.CategoryTransmissionstarif
	case strings.Contains(lower, "systemtarif"):
		return pricedomain.CategorySystemtarif
	case strings.Contains(lower, "balancetarif"):
		return pricedomain.CategoryBalancetarif
	case strings.Contains(lower, "elafgift"):
		return pricedomain.CategoryElafgift
	case strings.Contains(lower, "abonnement"):
		return pricedomain.CategoryNetabonnement
	case strings.Contains(lower, "tillæg"):
		return pricedomain.CategoryLeverandoertillaeg
	case strings.Contains(lower, "nettarif"), strings.Contains(lower, "net tarif"):
		return pricedomain.CategoryNettarif
	}
	return pricedomain.CategoryOther
}

func recordDecimal(r cim.Record, key string) (decimal.Decimal, error) {
	switch v := r[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, apperr.New(apperr.ErrValidation, "record field %q is not a number: %v", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case decimal.Decimal:
		return v, nil
	}
	return decimal.Zero, apperr.New(apperr.ErrValidation, "record field %q is not a number", key)
}

func recordInt(r cim.Record, key string) (int, error) {
	d, err := recordDecimal(r, key)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, apperr.New(apperr.ErrValidation, "record field %q is not an integer", key)
	}
	return int(d.IntPart()), nil
}

func recordList(r cim.Record, key string) []cim.Record {
	switch v := r[key].(type) {
	case []cim.Record:
		return v
	case []any:
		records := make([]cim.Record, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, cim.Record(m))
			}
		}
		return records
	}
	return nil
}
