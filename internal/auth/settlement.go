package auth

import (
	"context"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
)

// SettlementAuthorizer decides who may mark a settlement as paid. The
// settlement core delegates this decision entirely: it never evaluates
// permissions itself.
type SettlementAuthorizer interface {
	// CanMarkPaid returns nil if userID may settle s, or an
	// AuthorizationError otherwise.
	CanMarkPaid(ctx context.Context, userID string, s *models.Settlement) error
}

// PartyAuthorizer allows only the two parties to the transfer (debtor
// or creditor) to mark it paid.
type PartyAuthorizer struct{}

func (PartyAuthorizer) CanMarkPaid(_ context.Context, userID string, s *models.Settlement) error {
	if userID == s.FromUserID || userID == s.ToUserID {
		return nil
	}
	return errs.Forbidden("only a party to the settlement may mark it paid")
}
