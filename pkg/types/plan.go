package types

import "time"

type DurationType string

const (
	DurationTypeMonths DurationType = "months"
	DurationTypeYears  DurationType = "years"
)

// Plan is a purchasable billing tier. Plans are loaded once from configuration
// and never mutated afterwards.
type Plan struct {
	Key      string `json:"key" mapstructure:"key" validate:"required,max=64"`
	Name     string `json:"name" mapstructure:"name"`
	Amount   int64  `json:"amount" mapstructure:"amount" validate:"gt=0"`
	Currency string `json:"currency" mapstructure:"currency" validate:"required,len=3,uppercase"`
	// Duration is expressed in DurationType units.
	Duration     int          `json:"duration" mapstructure:"duration" validate:"gt=0"`
	DurationType DurationType `json:"duration_type" mapstructure:"duration_type" validate:"required,oneof=months years"`
}

// AddPeriod returns start shifted by one plan period using calendar arithmetic.
func (p *Plan) AddPeriod(start time.Time) time.Time {
	switch p.DurationType {
	case DurationTypeYears:
		return start.AddDate(p.Duration, 0, 0)
	default:
		return start.AddDate(0, p.Duration, 0)
	}
}
