package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/ledger"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
)

// RecordPayment spreads a payment over the customer's orders of one day. The day is locked
// for the whole read-allocate-write cycle and the write is all-or-nothing.
func (s *Service) RecordPayment(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.PaymentResponse{}, err
	}
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Date = strings.TrimSpace(req.Date)
	if err := s.check(req); err != nil {
		return domain.PaymentResponse{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.PaymentResponse{}, ledger.ErrInvalidAmount
	}
	if err := checkMoney("amount", req.Amount); err != nil {
		return domain.PaymentResponse{}, err
	}

	release, err := s.lockDay(ctx, owner, req.CustomerID, req.Date)
	if err != nil {
		return domain.PaymentResponse{}, err
	}
	defer release()

	orders, err := s.repo.ListDayOrders(ctx, owner, req.CustomerID, req.Date)
	if err != nil {
		return domain.PaymentResponse{}, err
	}

	alloc, err := ledger.AllocatePayment(orders, req.Amount, req.ConfirmOverpayment)
	if err != nil {
		if errors.Is(err, ledger.ErrNoOrders) {
			return domain.PaymentResponse{}, fmt.Errorf("%w: no orders for customer %s on %s", store.ErrNotFound, req.CustomerID, req.Date)
		}
		return domain.PaymentResponse{}, err
	}

	if err := s.repo.ApplyPayments(ctx, owner, alloc.Updates); err != nil {
		return domain.PaymentResponse{}, err
	}
	updated := ledger.ApplyAllocation(orders, alloc)

	s.invalidateStatements(ctx, owner)
	s.logAudit(ctx, owner, "payment_record", "customer", req.CustomerID, fmt.Sprintf("date=%s,amount=%s,orders=%d,overpayment=%s", req.Date, req.Amount, len(alloc.Updates), alloc.Overpayment))
	if alloc.Overpayment.IsPositive() {
		s.log.WithFields(logrus.Fields{
			"owner":       owner,
			"customer":    req.CustomerID,
			"date":        req.Date,
			"overpayment": alloc.Overpayment.String(),
		}).Info("confirmed overpayment recorded")
	}

	return domain.PaymentResponse{
		CustomerID:  req.CustomerID,
		Date:        req.Date,
		Amount:      req.Amount,
		Overpayment: alloc.Overpayment,
		Updates:     alloc.Updates,
		Summary:     ledger.Summarize(updated),
	}, nil
}
