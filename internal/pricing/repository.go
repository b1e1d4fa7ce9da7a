package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

type Repository interface {
	GetByCategory(ctx context.Context, category resource.Category) (*Rule, error)
	Upsert(ctx context.Context, rule *Rule) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByCategory(ctx context.Context, category resource.Category) (*Rule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("category", "kind", "params", "reward_coins", "updated_at").
		From("public.pricing_rules").
		Where(squirrel.Eq{"category": category}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get pricing rule query failed: %w", err)
	}

	var (
		rule   Rule
		kind   string
		params []byte
	)
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&rule.Category, &kind, &params, &rule.RewardCoins, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get pricing rule failed: %w", err)
	}

	rule.Plan, err = decodePlan(kind, params)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, rule *Rule) error {
	params, err := json.Marshal(rule.Plan)
	if err != nil {
		return fmt.Errorf("marshal pricing params failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.pricing_rules").
		Columns("category", "kind", "params", "reward_coins").
		Values(rule.Category, rule.Plan.Kind(), params, rule.RewardCoins).
		Suffix(`ON CONFLICT (category) DO UPDATE SET
			kind = EXCLUDED.kind,
			params = EXCLUDED.params,
			reward_coins = EXCLUDED.reward_coins,
			updated_at = now()
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert pricing rule query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&rule.UpdatedAt)
}

func decodePlan(kind string, params []byte) (RatePlan, error) {
	switch kind {
	case KindTieredHourly:
		var p TieredHourly
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode tiered_hourly params failed: %w", err)
		}
		return p, nil
	case KindFirstHourPlus:
		var p FirstHourPlus
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode first_hour_plus params failed: %w", err)
		}
		return p, nil
	default:
		return nil, ErrUnknownKind
	}
}
