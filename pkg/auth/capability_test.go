package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowAll(t *testing.T) {
	ok, err := AllowAll(context.Background(), "OP-001", CapabilityAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaticChecker(t *testing.T) {
	ctx := context.Background()
	checker := StaticChecker(map[string][]Capability{
		"OP-print": {CapabilityOperate, CapabilityPrinting},
		"OP-lead":  {CapabilityAdmin},
	})

	tests := []struct {
		name       string
		operatorID string
		capability Capability
		want       bool
	}{
		{"Granted capability", "OP-print", CapabilityPrinting, true},
		{"Ungranted capability", "OP-print", CapabilityApprove, false},
		{"Admin holds everything", "OP-lead", CapabilityCoating, true},
		{"Unknown operator", "OP-ghost", CapabilityOperate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := checker(ctx, tt.operatorID, tt.capability)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
