package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/blob"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/notify"
	"github.com/mmynk/tripsplit/internal/storage"
	"github.com/mmynk/tripsplit/pkg/api"
)

const notifyTimeout = 5 * time.Second

var (
	errForeignBlob   = fmt.Errorf("%w: upload does not belong to caller", calculator.ErrValidation)
	errNotInTrip     = fmt.Errorf("%w: participant is not a trip member", calculator.ErrValidation)
	errUploadKind    = fmt.Errorf("%w: only slip and qr uploads are accepted here", calculator.ErrValidation)
	errMissingBillID = fmt.Errorf("%w: bill id is required", calculator.ErrValidation)
)

// BillService implements the Connect BillService.
type BillService struct {
	store     storage.Store
	presigner blob.Presigner
	notifier  notify.Notifier
	logger    *slog.Logger
}

// BillOption customises a BillService.
type BillOption func(*BillService)

// WithPresigner enables slip and QR uploads.
func WithPresigner(p blob.Presigner) BillOption {
	return func(s *BillService) { s.presigner = p }
}

// WithNotifier sets where debt transitions are announced.
func WithNotifier(n notify.Notifier) BillOption {
	return func(s *BillService) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) BillOption {
	return func(s *BillService) { s.logger = l }
}

// NewBillService creates a BillService. Uploads are disabled and
// notifications dropped unless configured through opts.
func NewBillService(store storage.Store, opts ...BillOption) *BillService {
	s := &BillService{
		store:     store,
		presigner: blob.Disabled{},
		notifier:  notify.Noop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BillService) uploadsEnabled() bool {
	_, disabled := s.presigner.(blob.Disabled)
	return !disabled
}

// ComputeSplit previews how a total divides among participants without
// persisting anything. An unreconciled custom split is reported, not rejected.
func (s *BillService) ComputeSplit(ctx context.Context, req *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error) {
	mode, err := models.ParseSplitMode(req.Msg.SplitMode)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := calculator.ComputeSplit(req.Msg.Total, req.Msg.ParticipantIDs, mode, req.Msg.CustomAmounts)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "compute split", err)
	}

	return connect.NewResponse(&api.ComputeSplitResponse{
		Shares:  toAPIShares(result.Shares),
		Sum:     result.Sum(),
		Diff:    result.Diff,
		IsValid: result.IsValid,
		Message: result.Message(),
	}), nil
}

// splitInput is a validated bill form.
type splitInput struct {
	title  string
	method models.PaymentMethod
	value  string
	mode   models.SplitMode
	shares []calculator.Share
}

// validateInput runs form validation, computes the split and checks it
// for a bill owed to creditorID.
func (s *BillService) validateInput(in api.BillInput, creditorID string) (splitInput, error) {
	if err := calculator.ValidateBillForm(in.Title, in.Total, in.ParticipantIDs); err != nil {
		return splitInput{}, err
	}
	method, err := models.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return splitInput{}, err
	}
	mode, err := models.ParseSplitMode(in.SplitMode)
	if err != nil {
		return splitInput{}, err
	}

	result, err := calculator.ComputeSplit(in.Total, in.ParticipantIDs, mode, in.CustomAmounts)
	if err != nil {
		return splitInput{}, err
	}
	if err := calculator.ValidateSplit(creditorID, result); err != nil {
		return splitInput{}, err
	}

	value := strings.TrimSpace(in.PaymentValue)
	if method == models.PaymentQRImage && value != "" && s.uploadsEnabled() && !blob.OwnedBy(value, blob.KindQR, creditorID) {
		return splitInput{}, errForeignBlob
	}

	return splitInput{
		title:  strings.TrimSpace(in.Title),
		method: method,
		value:  value,
		mode:   mode,
		shares: result.Shares,
	}, nil
}

// checkParticipants verifies that everyone on the bill is registered and,
// for trip bills, a member of the trip.
func (s *BillService) checkParticipants(ctx context.Context, tripID, creditorID string, shares []calculator.Share) error {
	ids := make([]string, len(shares))
	for i, sh := range shares {
		ids[i] = sh.ParticipantID
	}

	if tripID == "" {
		_, err := resolveUsers(ctx, s.store, ids)
		return err
	}

	trip, err := memberTrip(ctx, s.store, tripID, creditorID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !trip.HasMember(id) {
			return fmt.Errorf("%w: %q", errNotInTrip, id)
		}
	}
	return nil
}

// billResponse converts bill with the display names of its parties.
func (s *BillService) billResponse(ctx context.Context, bill *models.Bill) (*api.Bill, error) {
	names, err := s.store.GetUsersByIDs(ctx, billPartyIDs(bill))
	if err != nil {
		return nil, err
	}
	return toAPIBill(bill, names), nil
}

// CreateBill records a bill owed to the caller.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateBill request received",
		"trip_id", req.Msg.TripID,
		"title", req.Msg.Title,
		"total", req.Msg.Total.String(),
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	in, err := s.validateInput(req.Msg.BillInput, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "create bill", err)
	}
	if err := s.checkParticipants(ctx, req.Msg.TripID, userID, in.shares); err != nil {
		return nil, toConnectError(ctx, s.logger, "create bill", err)
	}

	bill := &models.Bill{
		TripID:        req.Msg.TripID,
		Title:         in.title,
		Total:         req.Msg.Total,
		PaymentMethod: in.method,
		PaymentValue:  in.value,
		CreditorID:    userID,
		SplitMode:     in.mode,
		Debts:         calculator.NewDebts(in.shares),
	}
	bill.IsCompleted = calculator.IsCompleted(bill.Debts)

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, toConnectError(ctx, s.logger, "create bill", err)
	}

	out, err := s.billResponse(ctx, bill)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "create bill", err)
	}

	s.logger.Info("Bill created", "bill_id", bill.ID, "debts", len(bill.Debts))
	return connect.NewResponse(&api.CreateBillResponse{Bill: out}), nil
}

// GetBill returns a bill with its debts in display order.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get bill", err)
	}
	if err := canViewBill(ctx, s.store, bill, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "get bill", err)
	}

	out, err := s.billResponse(ctx, bill)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get bill", err)
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: out}), nil
}

// ListBillsByTrip returns summaries of a trip's bills, newest first.
func (s *BillService) ListBillsByTrip(ctx context.Context, req *connect.Request[api.ListBillsByTripRequest]) (*connect.Response[api.ListBillsByTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := memberTrip(ctx, s.store, req.Msg.TripID, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "list bills", err)
	}

	bills, err := s.store.ListBillsByTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "list bills", err)
	}

	summaries := make([]*api.BillSummary, len(bills))
	for i, b := range bills {
		summaries[i] = toAPIBillSummary(b)
	}

	s.logger.Info("ListBillsByTrip successful", "trip_id", req.Msg.TripID, "count", len(summaries))
	return connect.NewResponse(&api.ListBillsByTripResponse{Bills: summaries}), nil
}

// UpdateBill lets the creditor edit a bill. Debtors whose amount is
// unchanged keep their payment status; everyone else starts over unpaid.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.BillID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingBillID)
	}
	s.logger.Info("UpdateBill request received", "bill_id", req.Msg.BillID, "participants_count", len(req.Msg.ParticipantIDs))

	current, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "update bill", err)
	}
	if current.CreditorID != userID {
		return nil, toConnectError(ctx, s.logger, "update bill", errNotCreditor)
	}

	in, err := s.validateInput(req.Msg.BillInput, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "update bill", err)
	}
	if err := s.checkParticipants(ctx, current.TripID, userID, in.shares); err != nil {
		return nil, toConnectError(ctx, s.logger, "update bill", err)
	}

	updated, err := s.store.UpdateBill(ctx, req.Msg.BillID, func(b models.Bill) (models.Bill, error) {
		if b.CreditorID != userID {
			return b, errNotCreditor
		}
		b.Title = in.title
		b.Total = req.Msg.Total
		b.PaymentMethod = in.method
		b.PaymentValue = in.value
		b.SplitMode = in.mode
		b.Debts = calculator.MergeDebts(b.Debts, in.shares)
		b.IsCompleted = calculator.IsCompleted(b.Debts)
		return b, nil
	})
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "update bill", err)
	}

	out, err := s.billResponse(ctx, updated)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "update bill", err)
	}

	s.logger.Info("Bill updated", "bill_id", updated.ID, "completed", updated.IsCompleted)
	return connect.NewResponse(&api.UpdateBillResponse{Bill: out}), nil
}

// DeleteBill removes a bill and its debts. Only the creditor may delete.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "delete bill", err)
	}
	if bill.CreditorID != userID {
		return nil, toConnectError(ctx, s.logger, "delete bill", errNotCreditor)
	}

	if err := s.store.DeleteBill(ctx, bill.ID); err != nil {
		return nil, toConnectError(ctx, s.logger, "delete bill", err)
	}

	s.logger.Info("Bill deleted", "bill_id", bill.ID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// TransitionDebt moves one debt through the settlement workflow on behalf
// of the caller and announces the new status.
func (s *BillService) TransitionDebt(ctx context.Context, req *connect.Request[api.TransitionDebtRequest]) (*connect.Response[api.TransitionDebtResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("TransitionDebt request received",
		"bill_id", req.Msg.BillID,
		"participant_id", req.Msg.ParticipantID,
		"action", req.Msg.Action,
	)

	action, err := calculator.ParseDebtAction(req.Msg.Action)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "transition debt", err)
	}

	slipRef := strings.TrimSpace(req.Msg.SlipRef)
	if action == calculator.ActionSubmitSlip && slipRef != "" && s.uploadsEnabled() &&
		!blob.OwnedBy(slipRef, blob.KindSlip, userID) {
		return nil, toConnectError(ctx, s.logger, "transition debt", errForeignBlob)
	}

	bill, err := s.store.UpdateDebt(ctx, req.Msg.BillID, func(b models.Bill) (models.Bill, error) {
		return calculator.TransitionDebt(b, req.Msg.ParticipantID, action, userID, calculator.WithSlip(slipRef))
	})
	if err != nil {
		s.logger.Warn("TransitionDebt rejected", "bill_id", req.Msg.BillID, "user_id", userID, "error", err)
		return nil, toConnectError(ctx, s.logger, "transition debt", err)
	}

	if debt, _, ok := bill.FindDebt(req.Msg.ParticipantID); ok {
		s.announce(ctx, bill, debt)
	}

	out, err := s.billResponse(ctx, bill)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "transition debt", err)
	}

	s.logger.Info("Debt transitioned", "bill_id", bill.ID, "participant_id", req.Msg.ParticipantID, "completed", bill.IsCompleted)
	return connect.NewResponse(&api.TransitionDebtResponse{Bill: out}), nil
}

// announce notifies the interested party. Failures are logged only.
func (s *BillService) announce(ctx context.Context, bill *models.Bill, debt models.Debt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	event := notify.DebtEvent{
		BillID:        bill.ID,
		BillTitle:     bill.Title,
		CreditorID:    bill.CreditorID,
		ParticipantID: debt.ParticipantID,
		Amount:        debt.Amount,
		Status:        debt.Status,
	}
	if err := s.notifier.DebtChanged(ctx, event); err != nil {
		s.logger.Warn("Debt notification failed", "bill_id", bill.ID, "participant_id", debt.ParticipantID, "error", err)
	}
}

// RequestUploadURL presigns an upload for a payment slip or QR image.
func (s *BillService) RequestUploadURL(ctx context.Context, req *connect.Request[api.RequestUploadURLRequest]) (*connect.Response[api.RequestUploadURLResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	kind, err := blob.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "request upload url", err)
	}
	if kind != blob.KindSlip && kind != blob.KindQR {
		return nil, toConnectError(ctx, s.logger, "request upload url", errUploadKind)
	}

	u, err := s.presigner.PresignPut(ctx, kind, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "request upload url", err)
	}

	s.logger.Info("Upload URL issued", "user_id", userID, "kind", kind, "key", u.Key)
	return connect.NewResponse(&api.RequestUploadURLResponse{
		Key:       u.Key,
		UploadURL: u.URL,
		ExpiresAt: u.ExpiresAt.Unix(),
	}), nil
}

// GetSlipURL presigns a download of a debt's latest payment slip for the
// bill's creditor or the debtor.
func (s *BillService) GetSlipURL(ctx context.Context, req *connect.Request[api.GetSlipURLRequest]) (*connect.Response[api.GetSlipURLResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get slip url", err)
	}
	if userID != bill.CreditorID && userID != req.Msg.ParticipantID {
		return nil, toConnectError(ctx, s.logger, "get slip url", errNotBillParty)
	}

	debt, _, ok := bill.FindDebt(req.Msg.ParticipantID)
	if !ok {
		return nil, toConnectError(ctx, s.logger, "get slip url", calculator.ErrDebtNotFound)
	}
	if debt.SlipRef == "" {
		return nil, toConnectError(ctx, s.logger, "get slip url", errNoSlip)
	}

	u, err := s.presigner.PresignGet(ctx, debt.SlipRef)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get slip url", err)
	}
	return connect.NewResponse(&api.GetSlipURLResponse{URL: u.URL, ExpiresAt: u.ExpiresAt.Unix()}), nil
}
