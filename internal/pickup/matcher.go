package pickup

import (
	"strings"

	"github.com/Justoo1/daycare-management-system-sub000/internal/child"
	pickuperrors "github.com/Justoo1/daycare-management-system-sub000/internal/pickup/errors"

	"github.com/google/uuid"
)

const (
	MatchSourceGuardian       = "GUARDIAN"
	MatchSourceAuthorizedList = "AUTHORIZED_LIST"
)

// Match is a positive authorization decision. Phone is empty when the match
// came from the free-text list, which cannot support secure checkout.
type Match struct {
	GuardianID *uuid.UUID
	Phone      string
	Source     string
}

// MatchAuthorizedPickup decides whether the claimed person may remove the
// child. Exact normalized full-name match only; ambiguous or partial names
// fail closed. Guardians flagged is_authorized_pickup are checked first, the
// child's free-text authorized names second. The claimed relationship is
// stored for audit but never restricts the match.
func MatchAuthorizedPickup(guardians []child.Guardian, authorizedNames []string, claimedName string) (Match, error) {
	claimed := normalizeName(claimedName)
	if claimed == "" {
		return Match{}, pickuperrors.ErrNotAuthorizedPickup
	}

	for _, g := range guardians {
		if !g.IsAuthorizedPickup {
			continue
		}
		if normalizeName(g.FullName) == claimed {
			id := g.ID
			return Match{
				GuardianID: &id,
				Phone:      strings.TrimSpace(g.Phone),
				Source:     MatchSourceGuardian,
			}, nil
		}
	}

	for _, name := range authorizedNames {
		if normalizeName(name) == claimed {
			return Match{Source: MatchSourceAuthorizedList}, nil
		}
	}

	return Match{}, pickuperrors.ErrNotAuthorizedPickup
}

// normalizeName trims, collapses inner whitespace and case-folds.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
