package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"

	"github.com/fatflowers/cardbilling/pkg/billingerr"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/types"
)

// Catalog is the ordered, immutable set of purchasable plans.
type Catalog struct {
	plans []*types.Plan
	byKey map[string]*types.Plan
}

// New validates plans and freezes them in the given order. Any invalid or
// duplicate plan is a configuration error.
func New(plans []*types.Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	c := &Catalog{
		plans: make([]*types.Plan, 0, len(plans)),
		byKey: make(map[string]*types.Plan, len(plans)),
	}
	for i, p := range plans {
		if p == nil {
			return nil, fmt.Errorf("plan #%d is nil", i)
		}
		if err := v.Struct(p); err != nil {
			return nil, fmt.Errorf("plan %q is invalid: %w", p.Key, err)
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate plan key %q", p.Key)
		}
		cp := *p
		c.plans = append(c.plans, &cp)
		c.byKey[cp.Key] = &cp
	}
	return c, nil
}

func NewFromConfig(cfg *cfgpkg.Config) (*Catalog, error) {
	plans := cfg.Plans
	if len(plans) == 0 {
		plans = cfgpkg.DefaultPlans()
	}
	return New(plans)
}

// ListPlans returns copies of the plans in configuration order.
func (c *Catalog) ListPlans() []types.Plan {
	out := make([]types.Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = *p
	}
	return out
}

// Resolve returns the plan for key or billingerr.ErrInvalidPlan.
func (c *Catalog) Resolve(key string) (*types.Plan, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: empty plan type", billingerr.ErrInvalidPlan)
	}
	p, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", billingerr.ErrInvalidPlan, key)
	}
	cp := *p
	return &cp, nil
}

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
