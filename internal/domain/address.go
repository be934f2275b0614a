package domain

// FlatNotAvailable is the sentinel used when no flat or unit number could
// be extracted from an address. The courier requires the field to be
// present, so absence is encoded rather than omitted.
const FlatNotAvailable = "N/A"

// AddressNumbers holds the human-readable address components extracted
// from free-form address text. Block is always present and positive;
// a parse that cannot produce a block yields no AddressNumbers at all.
// Road and Building are optional and zero when unmatched. These are
// never courier IDs - see ResolvedAddressIDs for those.
type AddressNumbers struct {
	Block    int
	Road     int
	Building int
	Flat     string
}

// HasRoad reports whether a road number was extracted.
func (n AddressNumbers) HasRoad() bool { return n.Road > 0 }

// HasBuilding reports whether a building number was extracted.
func (n AddressNumbers) HasBuilding() bool { return n.Building > 0 }

// ResolvedAddressIDs holds the courier's internal identifiers for an
// address. BlockID is mandatory. RoadID and BuildingID are zero whenever
// no confident match exists in master data - they are never guessed.
// A non-zero RoadID or BuildingID always corresponds to a record present
// in the courier's master data at resolution time.
type ResolvedAddressIDs struct {
	BlockID    int64
	RoadID     int64
	BuildingID int64
}

// PickupLocation is the merchant's resolved pickup point, computed from
// the storefront's configured store address. Cached per shop without a
// TTL; invalidated on app uninstall and store address changes.
type PickupLocation struct {
	ShopKey      string
	Address      string
	BlockID      int64
	RoadID       int64
	BuildingID   int64
	Block        int
	Road         int
	Building     int
	Flat         string
	ContactName  string
	ContactPhone string
}
