package dex

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/retry"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/memo"
)

const (
	transactionEventName           = "HybridDexTransaction"
	confirmationDurationMetricName = "HybridDex/ConfirmationDuration"
	rejectionCountMetricName       = "HybridDex/Rejections"
)

var errPending = errors.New("transaction pending")

// Submit signs the request with the session's signer, submits it and waits
// for it to reach the session's commitment. Rejections are returned as a
// *RemoteRejectedError and never resubmitted.
func (s *Session) Submit(ctx context.Context, req *Request) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	tracer.AddAttribute("operation", req.Operation)
	defer tracer.End()

	start := time.Now()
	sig, err := s.submit(ctx, req)
	tracer.OnError(err)

	metrics.RecordEvent(ctx, transactionEventName, map[string]interface{}{
		"session":   s.id.String(),
		"operation": req.Operation,
		"signature": sig.String(),
		"success":   err == nil,
		"rejected":  errors.Is(err, ErrRemoteRejected),
		"duration":  time.Since(start).Milliseconds(),
	})

	if errors.Is(err, ErrRemoteRejected) {
		metrics.RecordCount(ctx, rejectionCountMetricName, 1)
	}

	return sig, err
}

func (s *Session) submit(ctx context.Context, req *Request) (solana.Signature, error) {
	var sig solana.Signature

	if s.signer == nil {
		return sig, ErrNoSigner
	}

	log := s.log.WithFields(logrus.Fields{
		"method":    "Submit",
		"operation": req.Operation,
	})

	bh, err := s.sc.GetLatestBlockhash()
	if err != nil {
		return sig, errors.Wrap(err, "failed to get latest blockhash")
	}

	var suffix []solana.Instruction
	if s.memo != "" {
		suffix = append(suffix, memo.Instruction(s.memo))
	}

	txn := req.Transaction(bh, s.budget.Instructions(), suffix)
	if err := txn.Sign(s.signer); err != nil {
		return sig, errors.Wrap(err, "failed to sign transaction")
	}
	copy(sig[:], txn.Signature())

	log = log.WithField("signature", sig.String())

	if _, err := s.sc.SubmitTransaction(txn, s.commitment); err != nil {
		var txErr *solana.TransactionError
		if errors.As(err, &txErr) {
			rejected := &RemoteRejectedError{Operation: req.Operation, Signature: sig, Err: txErr}
			log.WithError(rejected).Info("transaction rejected")
			return sig, rejected
		}

		log.WithError(err).Warn("failure submitting transaction")
		return sig, errors.Wrap(err, "failed to submit transaction")
	}

	log.Debug("transaction submitted")

	confirmStart := time.Now()
	strategies := append([]retry.Strategy{
		retry.Context(ctx),
		retry.RetriableErrors(errPending),
	}, s.confirmation...)

	var lastStatusErr error
	_, err = retry.Retry(func() error {
		statuses, err := s.sc.GetSignatureStatuses([]solana.Signature{sig})
		if err != nil {
			log.WithError(err).Warn("failure getting signature status")
			lastStatusErr = err
			return errPending
		}
		lastStatusErr = nil

		if len(statuses) == 0 || statuses[0] == nil {
			return errPending
		}
		status := statuses[0]

		if status.ErrorResult != nil {
			return retry.Permanent(&RemoteRejectedError{Operation: req.Operation, Signature: sig, Err: status.ErrorResult})
		}
		if !status.Reached(s.commitment) {
			return errPending
		}
		return nil
	}, strategies...)

	switch {
	case err == nil:
		metrics.RecordDuration(ctx, confirmationDurationMetricName, time.Since(confirmStart))
		log.Debug("transaction confirmed")
		return sig, nil
	case errors.Is(err, ErrRemoteRejected):
		log.WithError(err).Info("transaction failed")
		return sig, err
	case err == errPending && lastStatusErr != nil:
		return sig, errors.Wrapf(ErrNotConfirmed, "%s: last status check failed: %v", sig.String(), lastStatusErr)
	case err == errPending:
		return sig, errors.Wrapf(ErrNotConfirmed, "%s after %s", sig.String(), s.commitment.Commitment)
	default:
		return sig, err
	}
}
