package ledger

import (
	"errors"
	"fmt"
	"strings"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

var ErrInvalidSplit = errors.New("invalid split")

// SplitGroupExpense assigns each member a share of total. Equal splits are
// computed to the cent and leftover cents go to the first members. Custom
// splits keep the given shares, which must be non-negative and add up to total.
func SplitGroupExpense(total decimal.Decimal, splitType models.SplitType, members []models.GroupMember) ([]models.GroupMember, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrInvalidSplit)
	}
	seen := make(map[string]bool, len(members))
	out := make([]models.GroupMember, len(members))
	for i, m := range members {
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: member email is required", ErrInvalidSplit)
		}
		if seen[email] {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrInvalidSplit, email)
		}
		seen[email] = true
		out[i] = models.GroupMember{Email: email, Share: m.Share, Paid: m.Paid}
	}

	switch splitType {
	case models.SplitEqual:
		cents := total.Shift(2).Round(0).IntPart()
		n := int64(len(out))
		base, rem := cents/n, cents%n
		for i := range out {
			c := base
			if int64(i) < rem {
				c++
			}
			out[i].Share = decimal.New(c, -2)
		}
	case models.SplitCustom:
		sum := decimal.Zero
		for _, m := range out {
			if m.Share.IsNegative() {
				return nil, fmt.Errorf("%w: share for %s is negative", ErrInvalidSplit, m.Email)
			}
			sum = sum.Add(m.Share)
		}
		if !sum.Equal(total) {
			return nil, fmt.Errorf("%w: shares add up to %s, expected %s", ErrInvalidSplit, sum.StringFixed(2), total.StringFixed(2))
		}
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, splitType)
	}
	return out, nil
}
