package reward

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)

	// Credit applies a ledger entry and the balance increment as one
	// transaction, recomputing the tier from the resulting balance.
	// A partial application is a correctness bug, not a tolerable race.
	Credit(ctx context.Context, entry *LedgerEntry) (*CreditResult, error)

	ListLedger(ctx context.Context, customerID string, limit int) ([]*LedgerEntry, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "name", "email", "phone", "coin_balance", "tier", "created_at").
		From("public.customers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get customer query failed: %w", err)
	}

	var c Customer
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CoinBalance, &c.Tier, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) Credit(ctx context.Context, entry *LedgerEntry) (*CreditResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin credit tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	insertSQL, insertArgs, err := psql.Insert("public.coin_ledger").
		Columns("customer_id", "booking_id", "coins", "reason").
		Values(entry.CustomerID, entry.BookingID, entry.Coins, entry.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger insert query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert ledger entry failed: %w", err)
	}

	updateSQL, updateArgs, err := psql.Update("public.customers").
		Set("coin_balance", squirrel.Expr("coin_balance + ?", entry.Coins)).
		Where(squirrel.Eq{"id": entry.CustomerID}).
		Suffix("RETURNING coin_balance, tier").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build balance update query failed: %w", err)
	}

	var (
		newBalance int64
		oldTier    Tier
	)
	err = tx.QueryRow(ctx, updateSQL, updateArgs...).Scan(&newBalance, &oldTier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("increment balance failed: %w", err)
	}

	newTier := TierFor(newBalance)
	if newTier != oldTier {
		tierSQL, tierArgs, err := psql.Update("public.customers").
			Set("tier", newTier).
			Where(squirrel.Eq{"id": entry.CustomerID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build tier update query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, tierSQL, tierArgs...); err != nil {
			return nil, fmt.Errorf("update tier failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit credit tx failed: %w", err)
	}

	return &CreditResult{
		NewBalance: newBalance,
		Tier:       newTier,
		Upgraded:   newTier != oldTier,
	}, nil
}

func (r *pgxRepository) ListLedger(ctx context.Context, customerID string, limit int) ([]*LedgerEntry, error) {
	if limit < 1 {
		limit = 50
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "customer_id", "booking_id", "coins", "reason", "created_at").
		From("public.coin_ledger").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ledger query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger failed: %w", err)
	}
	defer rows.Close()

	var entries []*LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.BookingID, &e.Coins, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry failed: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
