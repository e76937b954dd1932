// internal/engine/cache/fingerprint.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"property-advisor/internal/models"
)

// Fingerprint derives the stable cache key for a recommendation request:
// a hash over the canonical profile serialization plus the property-set and
// service-set version counters. Hashing the versions instead of the datasets
// keeps lookups cheap while still invalidating across data refreshes.
func Fingerprint(profile models.Profile, propertyVersion, serviceVersion uint64) string {
	canon := profile
	if len(profile.PreferredZones) > 0 {
		zones := append([]string(nil), profile.PreferredZones...)
		sort.Strings(zones)
		canon.PreferredZones = zones
	}
	if len(profile.RequiredServices) > 0 {
		cats := append([]models.ServiceCategory(nil), profile.RequiredServices...)
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
		canon.RequiredServices = cats
	}

	// json.Marshal emits struct fields in declaration order and map keys
	// sorted, so the serialization is deterministic.
	payload, err := json.Marshal(canon)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", canon))
	}

	h := sha256.New()
	h.Write(payload)
	fmt.Fprintf(h, "|p%d|s%d", propertyVersion, serviceVersion)
	return hex.EncodeToString(h.Sum(nil))
}
