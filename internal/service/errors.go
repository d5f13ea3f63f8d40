package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/blob"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var (
	errUnauthenticated = errors.New("authentication required")
	errNotTripMember   = errors.New("not a member of this trip")
	errNotBillParty    = errors.New("not a party to this bill")
	errNotCreditor     = errors.New("only the creditor can change this bill")
	errNoSlip          = errors.New("no payment slip uploaded")
)

// toConnectError maps domain and storage errors onto Connect codes.
// Unexpected errors are logged and reported as Internal.
func toConnectError(ctx context.Context, logger *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var code connect.Code
	switch {
	case errors.Is(err, calculator.ErrValidation),
		errors.Is(err, models.ErrUnknownDebtStatus),
		errors.Is(err, models.ErrUnknownPaymentMethod),
		errors.Is(err, models.ErrUnknownSplitMode),
		errors.Is(err, blob.ErrUnknownKind),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrEmptyDisplayName):
		code = connect.CodeInvalidArgument
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		code = connect.CodeUnauthenticated
	case errors.Is(err, calculator.ErrNotAuthorized),
		errors.Is(err, errNotTripMember),
		errors.Is(err, errNotBillParty),
		errors.Is(err, errNotCreditor):
		code = connect.CodePermissionDenied
	case errors.Is(err, calculator.ErrInvalidTransition):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, calculator.ErrDebtNotFound),
		errors.Is(err, errNoSlip):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, auth.ErrEmailExists):
		code = connect.CodeAlreadyExists
	case errors.Is(err, blob.ErrDisabled):
		code = connect.CodeUnimplemented
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		logger.ErrorContext(ctx, "Request failed", "op", op, "user_id", middleware.GetUserID(ctx), "error", err)
		return connect.NewError(connect.CodeInternal, errors.New(op+" failed"))
	}
	return connect.NewError(code, err)
}

// callerID returns the authenticated participant or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetUserID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
	}
	return id, nil
}
