package service

import "github.com/alexanderramin/timeledger/internal/domain"

// requireIDs checks that every named id is positive.
func requireIDs(ids map[string]int64) error {
	v := &domain.ValidationError{}
	for field, id := range ids {
		if id <= 0 {
			v.Add(field, "must be a positive id")
		}
	}
	return v.OrNil()
}
