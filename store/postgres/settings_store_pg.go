package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	internal_store "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

const settingsColumns = `user_id, trip_reserve_percentage, early_unlock_percentage,
       locked_percentage, bank_balance, low_balance_threshold,
       critical_balance_threshold, updated_at`

var _ internal_store.SettingsStore = (*pgSettingsStore)(nil)

type pgSettingsStore struct {
	db DB
}

// NewPgSettingsStore creates a new PostgreSQL settings store.
func NewPgSettingsStore(db DB) internal_store.SettingsStore {
	return &pgSettingsStore{db: db}
}

func (s *pgSettingsStore) GetSettings(ctx context.Context, userID string) (*types.Settings, error) {
	query := fmt.Sprintf(`SELECT %s FROM settings WHERE user_id = $1`, settingsColumns)

	settings, err := scanSettings(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := types.DefaultSettings(userID)
			return &defaults, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return settings, nil
}

func (s *pgSettingsStore) UpdateSettings(ctx context.Context, userID string, update types.SettingsUpdate) (*types.Settings, error) {
	var settings *types.Settings

	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := lockSettings(ctx, tx, userID); err != nil {
			return err
		}

		var setFields []string
		var args []interface{}
		argPos := 1

		addField := func(name string, value interface{}) {
			setFields = append(setFields, fmt.Sprintf("%s = $%d", name, argPos))
			args = append(args, value)
			argPos++
		}

		if update.TripReservePercentage != nil {
			addField("trip_reserve_percentage", *update.TripReservePercentage)
		}
		if update.EarlyUnlockPercentage != nil {
			addField("early_unlock_percentage", *update.EarlyUnlockPercentage)
		}
		if update.LockedPercentage != nil {
			addField("locked_percentage", *update.LockedPercentage)
		}
		if update.BankBalance != nil {
			addField("bank_balance", *update.BankBalance)
		}
		if update.LowBalanceThreshold != nil {
			addField("low_balance_threshold", *update.LowBalanceThreshold)
		}
		if update.CriticalBalanceThreshold != nil {
			addField("critical_balance_threshold", *update.CriticalBalanceThreshold)
		}

		if len(setFields) == 0 {
			updated, err := lockSettings(ctx, tx, userID)
			if err != nil {
				return err
			}
			settings = updated
			return nil
		}

		setFields = append(setFields, "updated_at = NOW()")
		query := fmt.Sprintf(`
            UPDATE settings SET %s
            WHERE user_id = $%d
            RETURNING %s`,
			strings.Join(setFields, ", "), argPos, settingsColumns)
		args = append(args, userID)

		updated, err := scanSettings(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		settings = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// lockSettings ensures the user's settings row exists and locks it FOR UPDATE.
// The row serves as the per-user ledger lock for operations that validate
// against global aggregates.
func lockSettings(ctx context.Context, tx pgx.Tx, userID string) (*types.Settings, error) {
	defaults := types.DefaultSettings(userID)
	_, err := tx.Exec(ctx, `
        INSERT INTO settings (
            user_id, trip_reserve_percentage, early_unlock_percentage,
            locked_percentage, bank_balance, low_balance_threshold,
            critical_balance_threshold
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id) DO NOTHING`,
		userID,
		defaults.TripReservePercentage,
		defaults.EarlyUnlockPercentage,
		defaults.LockedPercentage,
		defaults.BankBalance,
		defaults.LowBalanceThreshold,
		defaults.CriticalBalanceThreshold,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM settings WHERE user_id = $1 FOR UPDATE`, settingsColumns)
	settings, err := scanSettings(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return settings, nil
}

func scanSettings(row pgx.Row) (*types.Settings, error) {
	var s types.Settings
	err := row.Scan(
		&s.UserID,
		&s.TripReservePercentage,
		&s.EarlyUnlockPercentage,
		&s.LockedPercentage,
		&s.BankBalance,
		&s.LowBalanceThreshold,
		&s.CriticalBalanceThreshold,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
