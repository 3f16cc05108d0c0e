package campaign

import (
	"fmt"
	"time"

	"restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
)

type Filter string

const (
	FilterAll            Filter = "all"
	FilterRecentlyActive Filter = "recently-active"
	FilterInactive       Filter = "inactive"
	FilterExplicit       Filter = "explicit"
)

// ActivityWindow separates recently-active from inactive customers.
const ActivityWindow = 30 * 24 * time.Hour

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterRecentlyActive, FilterInactive, FilterExplicit:
		return true
	}
	return false
}

type Audience struct {
	Filter      Filter
	CustomerIDs []int
}

// SelectRecipients resolves the audience against the tenant's customers at now.
// Explicit ids that do not belong to the tenant are ignored.
func SelectRecipients(customers []customer.Customer, audience Audience, now time.Time) ([]customer.Customer, error) {
	if !audience.Filter.IsValid() {
		return nil, domainErrors.NewAppError(fmt.Errorf("unknown audience filter %q", audience.Filter), domainErrors.ValidationError)
	}

	since := now.Add(-ActivityWindow)
	var wanted map[int]bool
	if audience.Filter == FilterExplicit {
		wanted = make(map[int]bool, len(audience.CustomerIDs))
		for _, id := range audience.CustomerIDs {
			wanted[id] = true
		}
	}

	selected := make([]customer.Customer, 0, len(customers))
	for _, c := range customers {
		var keep bool
		switch audience.Filter {
		case FilterAll:
			keep = true
		case FilterRecentlyActive:
			keep = c.ActiveSince(since)
		case FilterInactive:
			keep = !c.ActiveSince(since)
		case FilterExplicit:
			keep = wanted[c.ID]
			delete(wanted, c.ID)
		}
		if keep {
			selected = append(selected, c)
		}
	}

	if len(selected) == 0 {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.EmptyAudience)
	}
	return selected, nil
}
