package pricing

import (
	"context"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

type UpsertRequest struct {
	Category    resource.Category
	Plan        RatePlan
	RewardCoins int64
}

type Service interface {
	// RuleFor returns the pricing rule for a category, served from the
	// TTL cache when fresh.
	RuleFor(ctx context.Context, category resource.Category) (*Rule, error)

	// QuoteFor prices a proposed booking.
	QuoteFor(ctx context.Context, category resource.Category, partySize, durationMinutes int) (*Quote, error)

	// Upsert writes a rule and invalidates its cache entry.
	Upsert(ctx context.Context, req UpsertRequest) (*Rule, error)
}

type service struct {
	repo  Repository
	cache *ruleCache
}

func NewService(repo Repository, cacheTTL time.Duration) Service {
	return &service{
		repo:  repo,
		cache: newRuleCache(cacheTTL),
	}
}

func (s *service) RuleFor(ctx context.Context, category resource.Category) (*Rule, error) {
	if rule, ok := s.cache.get(category); ok {
		return rule, nil
	}

	rule, err := s.repo.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	s.cache.set(category, rule)
	return rule, nil
}

func (s *service) QuoteFor(ctx context.Context, category resource.Category, partySize, durationMinutes int) (*Quote, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	rule, err := s.RuleFor(ctx, category)
	if err != nil {
		return nil, err
	}

	estimate := rule.Plan.Estimate(partySize, durationMinutes)
	return &Quote{
		Estimate: estimate,
		Deposit:  Deposit(estimate),
	}, nil
}

func (s *service) Upsert(ctx context.Context, req UpsertRequest) (*Rule, error) {
	if !req.Category.Valid() {
		return nil, resource.ErrInvalidCategory
	}
	if err := validatePlan(req.Plan); err != nil {
		return nil, err
	}

	rule := &Rule{
		Category:    req.Category,
		Plan:        req.Plan,
		RewardCoins: req.RewardCoins,
	}
	if err := s.repo.Upsert(ctx, rule); err != nil {
		return nil, err
	}

	s.cache.invalidate(req.Category)
	return rule, nil
}

func validatePlan(plan RatePlan) error {
	switch p := plan.(type) {
	case TieredHourly:
		if p.SmallPartyRate <= 0 || p.LargePartyRate <= 0 || p.PartyThreshold <= 0 {
			return ErrInvalidRates
		}
	case FirstHourPlus:
		if p.FirstHourPrice <= 0 || p.PerHourRate <= 0 {
			return ErrInvalidRates
		}
	default:
		return ErrUnknownKind
	}
	return nil
}
