package services

import (
	"context"

	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/models"
)

// TransferAgent moves token balances between addresses. Vault-outbound
// transfers carry the capability of the derived vault authority; inbound
// transfers leave it empty.
type TransferAgent interface {
	Transfer(ctx context.Context, from, to, capability string, amount uint64) error
}

// EventSink receives domain events after their store transaction commits.
// Publishing is best effort; the durable record is the event row written
// inside the transaction.
type EventSink interface {
	Publish(ctx context.Context, kind models.EventKind, payload []byte)
}

// NopTransferAgent accepts every transfer. Used by the dev profile where no
// treasury endpoint is configured.
type NopTransferAgent struct{}

func (NopTransferAgent) Transfer(ctx context.Context, from, to, capability string, amount uint64) error {
	return nil
}

// NopEventSink drops events.
type NopEventSink struct{}

func (NopEventSink) Publish(ctx context.Context, kind models.EventKind, payload []byte) {}

// observeProof counts one proof verification outcome and passes the
// verifier error through.
func observeProof(kind string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	metrics.ProofVerifications.WithLabelValues(kind, outcome).Inc()
	return err
}
