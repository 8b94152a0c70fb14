package service

import (
	"context"
	"fmt"
	"time"

	"tech-kart/internal/gateway"
	"tech-kart/internal/model"
)

// VerifyPayment validates an inbound payment confirmation and transitions
// the order and its latest transaction to a terminal payment state. The
// callback is untrusted: the signature is recomputed server-side and
// compared in constant time, and a mismatch is recorded rather than dropped
// so fraudulent attempts leave an audit trail. Verification never touches
// inventory, and re-applying the same terminal state is not an error.
func (s *checkoutService) VerifyPayment(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error) {
	order, _, err := s.orders.FindOrderByID(ctx, req.OrderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", req.OrderID.String()).Msg("failed to load order for verification")
		return nil, model.ErrPersistenceFailure
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.GatewayOrderRef == nil {
		return nil, model.ErrOrderNotOnlinePayment
	}

	// A valid signature for one order must not be replayable against
	// another.
	if *order.GatewayOrderRef != req.GatewayOrderRef {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("stored_ref", *order.GatewayOrderRef).
			Str("supplied_ref", req.GatewayOrderRef).
			Msg("gateway order reference mismatch")
		return nil, model.ErrGatewayOrderMismatch
	}

	s.archivePayload(ctx, order.ID.String(), req.RawPayload)

	rawPayload := req.RawPayload
	paymentRef := req.GatewayPaymentRef

	if !gateway.VerifySignature(s.opts.SignatureSecret, req.GatewayOrderRef, req.GatewayPaymentRef, req.Signature) {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("gateway_payment_ref", req.GatewayPaymentRef).
			Msg("payment signature mismatch")

		// Terminal, user-visible failure. Recorded for audit, not retried.
		failPatch := model.OrderPaymentPatch{PaymentStatus: model.PaymentStatusFailed}
		if err := s.orders.UpdateOrderPayment(ctx, order.ID, failPatch); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to mark order payment failed")
		}
		txnPatch := model.TransactionPatch{
			Status:            model.PaymentStatusFailed,
			GatewayPaymentRef: &paymentRef,
			RawPayload:        &rawPayload,
		}
		if err := s.orders.UpdateLatestTransactionForOrder(ctx, order.ID, txnPatch); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to mark transaction failed")
		}

		return nil, model.ErrSignatureInvalid
	}

	signature := req.Signature
	paidPatch := model.OrderPaymentPatch{
		PaymentStatus:     model.PaymentStatusPaid,
		GatewayPaymentRef: &paymentRef,
		Signature:         &signature,
	}
	if err := s.orders.UpdateOrderPayment(ctx, order.ID, paidPatch); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to mark order paid")
		return nil, model.ErrPersistenceFailure
	}

	txnPatch := model.TransactionPatch{
		Status:            model.PaymentStatusPaid,
		GatewayOrderRef:   order.GatewayOrderRef,
		GatewayPaymentRef: &paymentRef,
		RawPayload:        &rawPayload,
	}
	if err := s.orders.UpdateLatestTransactionForOrder(ctx, order.ID, txnPatch); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to mark transaction paid")
		return nil, model.ErrPersistenceFailure
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("gateway_payment_ref", req.GatewayPaymentRef).
		Msg("payment verified")

	return &model.VerifyResponse{
		OrderID:       order.ID,
		PaymentStatus: model.PaymentStatusPaid,
	}, nil
}

// archivePayload stores the verbatim callback body for audit. Best-effort:
// archival failure never blocks verification.
func (s *checkoutService) archivePayload(ctx context.Context, orderID, payload string) {
	if s.archiver == nil || payload == "" {
		return
	}

	key := fmt.Sprintf("%s/%d.json", orderID, time.Now().UnixNano())
	if err := s.archiver.Archive(context.WithoutCancel(ctx), key, []byte(payload)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to archive callback payload")
	}
}
