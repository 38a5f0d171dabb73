package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := []string{"business_id", "issued_at"}

	tests := []struct {
		name    string
		filter  *CommonFilter
		wantErr bool
	}{
		{name: "eq on allowed field", filter: &CommonFilter{Field: "business_id", Operator: CommonFilterOperatorEq, Values: []any{"b-1"}}},
		{name: "range with two values", filter: &CommonFilter{Field: "issued_at", Operator: CommonFilterOperatorRange, Values: []any{"2024-01-01", "2024-02-01"}}},
		{name: "unknown column", filter: &CommonFilter{Field: "amount; drop table invoice", Operator: CommonFilterOperatorEq, Values: []any{1}}, wantErr: true},
		{name: "missing value", filter: &CommonFilter{Field: "business_id", Operator: CommonFilterOperatorEq}, wantErr: true},
		{name: "range with one value", filter: &CommonFilter{Field: "issued_at", Operator: CommonFilterOperatorRange, Values: []any{"2024-01-01"}}, wantErr: true},
		{name: "unknown operator", filter: &CommonFilter{Field: "business_id", Operator: "like", Values: []any{"b"}}, wantErr: true},
		{name: "nil filter", filter: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate(allowed)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
