package app

import "dealership_api/internal/domain"

// Cache keys for list results. Inserts evict the keys they can change.
func allKey(c domain.Collection) string { return "docs:" + string(c) + ":all" }

func dealerCarsKey(dealerID string) string { return "docs:cars:dealer:" + dealerID }

// affectedKeys lists the cached lists a new document in c invalidates.
func affectedKeys(c domain.Collection, d domain.Document) []string {
	keys := []string{allKey(c)}
	if c == domain.Cars {
		if id, ok := d.Str(domain.DealerIDField); ok {
			keys = append(keys, dealerCarsKey(id))
		}
	}
	return keys
}
