package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/notify"
)

// DefaultDeMinimisMax is the ceiling of de minimis aid a company may have
// received over the reference period, in euros.
var DefaultDeMinimisMax = decimal.NewFromInt(300000)

// DeMinimisAidSet is the form path of the aid list.
var DeMinimisAidSet = form.P("deMinimisAidSet")

var (
	// ErrAidListClosed is returned by Add once the total exceeds the maximum.
	ErrAidListClosed = errors.New("application: de minimis total exceeds the maximum")

	// ErrInvalidAid is returned for grants without a granter or a positive
	// amount.
	ErrInvalidAid = errors.New("application: invalid de minimis grant")
)

// AidList keeps the de minimis grants of a company with their running total.
//
// A grant that pushes the total over the maximum is still recorded, since it
// reflects aid the company has already received, but from then on the list
// is closed: CanAdd reports false and Add refuses further grants until one
// is removed. The application cannot be granted while the list is over the
// maximum, so the list's notification is blocking.
type AidList struct {
	max    decimal.Decimal
	grants []DeMinimisAid
	total  decimal.Decimal
}

// NewAidList creates an empty list with the given maximum total.
func NewAidList(max decimal.Decimal) *AidList {
	return &AidList{max: max, total: decimal.Zero}
}

// Max returns the configured maximum total.
func (l *AidList) Max() decimal.Decimal { return l.max }

// Total returns the sum of all grants.
func (l *AidList) Total() decimal.Decimal { return l.total }

// Len returns the number of grants.
func (l *AidList) Len() int { return len(l.grants) }

// Grants returns a copy of the grants.
func (l *AidList) Grants() []DeMinimisAid {
	return append([]DeMinimisAid(nil), l.grants...)
}

// Exceeded reports whether the total is over the maximum.
func (l *AidList) Exceeded() bool {
	return l.total.GreaterThan(l.max)
}

// CanAdd reports whether the add action is enabled.
func (l *AidList) CanAdd() bool {
	return !l.Exceeded()
}

// Add records grant. It returns ErrAidListClosed when the list is already
// over the maximum and ErrInvalidAid for incomplete grants.
func (l *AidList) Add(grant DeMinimisAid) error {
	if !l.CanAdd() {
		return fmt.Errorf("%w: total %s, max %s", ErrAidListClosed, l.total.StringFixed(2), l.max.StringFixed(2))
	}
	if strings.TrimSpace(grant.Granter) == "" || !grant.Amount.IsPositive() {
		return ErrInvalidAid
	}
	l.grants = append(l.grants, grant)
	l.total = l.total.Add(grant.Amount)
	return nil
}

// Remove drops the grant at index i.
func (l *AidList) Remove(i int) error {
	if i < 0 || i >= len(l.grants) {
		return fmt.Errorf("application: no de minimis grant at index %d", i)
	}
	l.total = l.total.Sub(l.grants[i].Amount)
	l.grants = append(l.grants[:i:i], l.grants[i+1:]...)
	return nil
}

// Notification returns the blocking notification shown while the total is
// over the maximum. ok is false when there is nothing to show.
func (l *AidList) Notification(tr notify.Translator) (n notify.Notification, ok bool) {
	if !l.Exceeded() {
		return notify.Notification{}, false
	}
	vars := map[string]string{
		"max":   form.FormatNumber(l.max.InexactFloat64()),
		"total": form.FormatNumber(l.total.InexactFloat64()),
	}
	title, msg := "deMinimis.maxExceeded", "deMinimis.total"
	if tr != nil {
		title, msg = tr.T(title, vars), tr.T(msg, vars)
	}
	return notify.Notification{
		Level:    notify.LevelError,
		Title:    title,
		Message:  msg,
		Blocking: true,
		Links: []notify.Link{{
			Field:  DeMinimisAidSet.String(),
			Anchor: "#" + DeMinimisAidSet.String(),
		}},
	}, true
}

// Values returns the grants in form shape.
func (l *AidList) Values() []any {
	out := make([]any, len(l.grants))
	for i, g := range l.grants {
		out[i] = map[string]any{
			"granter":   g.Granter,
			"amount":    form.FormatNumber(g.Amount.InexactFloat64()),
			"grantedAt": g.GrantedAt,
		}
	}
	return out
}

// AidListFromValues rebuilds an aid list from the deMinimisAidSet list of v.
// Grants are recorded even when they push the total over the maximum.
func AidListFromValues(v form.Values, max decimal.Decimal) (*AidList, error) {
	l := NewAidList(max)
	raw, ok := form.Get(v, DeMinimisAidSet)
	if !ok || raw == nil {
		return l, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("application: %s is %T, not a list", DeMinimisAidSet, raw)
	}
	for i, it := range items {
		m, _ := it.(map[string]any)
		granter, _ := m["granter"].(string)
		amount, err := ParseAmount(m["amount"])
		if err != nil {
			return nil, fmt.Errorf("application: grant %d: %w", i, err)
		}
		grantedAt, _ := m["grantedAt"].(string)
		l.grants = append(l.grants, DeMinimisAid{Granter: granter, Amount: amount, GrantedAt: grantedAt})
		l.total = l.total.Add(amount)
	}
	return l, nil
}

// ParseAmount reads a money amount from a form value ("1 234,50", 1234.5).
// Empty values are zero.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case string:
		if form.IsEmpty(n) {
			return decimal.Zero, nil
		}
		s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(n))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid amount %q", n)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("invalid amount %v", v)
}
