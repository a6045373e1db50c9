package auth

import (
	"context"
)

// Capability is a named permission an operator may hold. Stage definitions
// reference capabilities; the workflow engine only asks whether the acting
// operator holds one, it never decides how that is established.
type Capability string

const (
	CapabilityOperate  Capability = "operate"
	CapabilityApprove  Capability = "approve"
	CapabilityAdmin    Capability = "admin"
	CapabilityPrinting Capability = "printing"
	CapabilityEDM      Capability = "edm"
	CapabilityCoating  Capability = "coating"
	CapabilityAssembly Capability = "assembly"
)

// CapabilityChecker reports whether an operator holds a capability. The
// implementation lives with the caller (identity service, static config,
// test stub) and is injected into the application layer.
type CapabilityChecker func(ctx context.Context, operatorID string, capability Capability) (bool, error)

// AllowAll is a checker that grants every capability. Used by deployments
// that enforce authorization at the gateway, and by tests.
func AllowAll(ctx context.Context, operatorID string, capability Capability) (bool, error) {
	return true, nil
}

// StaticChecker builds a CapabilityChecker from a fixed operator-to-capability
// map, typically loaded from configuration.
func StaticChecker(grants map[string][]Capability) CapabilityChecker {
	index := make(map[string]map[Capability]bool, len(grants))
	for operator, caps := range grants {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		index[operator] = set
	}

	return func(ctx context.Context, operatorID string, capability Capability) (bool, error) {
		set, ok := index[operatorID]
		if !ok {
			return false, nil
		}
		if set[CapabilityAdmin] {
			return true, nil
		}
		return set[capability], nil
	}
}
