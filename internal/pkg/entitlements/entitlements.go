// Package entitlements maps merchant plans to feature limits.
package entitlements

import (
	"strings"

	"github.com/ManuelReschke/PauseFlow/app/models"
)

type Plan string

const (
	PlanFree     Plan = models.PlanFree
	PlanPro      Plan = models.PlanPro
	PlanLifetime Plan = models.PlanLifetime
)

// MaxConnectedAccounts returns how many Stripe accounts a plan may
// link. A return of 0 means unlimited.
func MaxConnectedAccounts(plan Plan) int {
	switch plan {
	case PlanLifetime:
		return 0
	case PlanPro:
		return 5
	default:
		return 1
	}
}

// CanLinkAccount reports whether a merchant on the given plan may link
// one more account given the current count.
func CanLinkAccount(plan string, currentCount int) bool {
	limit := MaxConnectedAccounts(Plan(strings.ToLower(plan)))
	if limit == 0 {
		return true
	}
	return currentCount < limit
}
