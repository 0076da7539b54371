package store

import (
	"context"
	"fmt"

	"tunebox/internal/models"
)

// GrantPremium applies a verified successful payment: it records the ledger
// entry and sets the user's premium flag in a single transaction. A txn_ref
// that is already recorded is a replay; the user is returned unchanged with
// replayed set to true.
func (s *Store) GrantPremium(ctx context.Context, rec models.PaymentRecord) (user models.User, replayed bool, err error) {
	if rec.TxnRef == "" {
		return models.User{}, false, invalidf("txn_ref is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	user, err = getUser(ctx, tx, rec.UserID, true)
	if err != nil {
		return models.User{}, false, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO payment_transactions (txn_ref, user_id, amount, response_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (txn_ref) DO NOTHING
	`, rec.TxnRef, rec.UserID, rec.Amount, rec.ResponseCode)
	if err != nil {
		return models.User{}, false, fmt.Errorf("record payment: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.User{}, false, fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 0 {
		return user, true, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET is_premium = TRUE
		WHERE id = $1
	`, rec.UserID); err != nil {
		return models.User{}, false, fmt.Errorf("grant premium: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, false, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	user.IsPremium = true
	return user, false, nil
}
