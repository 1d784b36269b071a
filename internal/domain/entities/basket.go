package entities

// Store is one nearby supermarket branch as returned by the geolocation
// resolver, already normalized to a chain identifier.
type Store struct {
	ChainID     string   `json:"chain_id"`
	DisplayName string   `json:"display_name"`
	Address     string   `json:"address,omitempty"`
	Location    Location `json:"location"`
	PlaceID     string   `json:"place_id,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

// Location represents geographical coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LineChoice is the selected outcome for one (item, store) pair. When no
// priced candidate survived, Substitute is true and Price stays nil.
type LineChoice struct {
	Item          string      `json:"item"`
	Title         string      `json:"title,omitempty"`
	Price         *float64    `json:"price"`
	Currency      string      `json:"currency"`
	Link          string      `json:"link,omitempty"`
	Domain        string      `json:"domain,omitempty"`
	Merchant      string      `json:"merchant,omitempty"`
	Source        SourceClass `json:"source,omitempty"`
	ConfidencePct int         `json:"confidence_pct"`
	Substitute    bool        `json:"substitute"`
}

// StoreBasket is one store's full comparison result. Total is nil when not a
// single line got a price. Breakdown preserves the requested item order.
type StoreBasket struct {
	ChainID      string       `json:"chain_id"`
	DisplayName  string       `json:"display_name"`
	Address      string       `json:"address,omitempty"`
	Location     Location     `json:"location"`
	Breakdown    []LineChoice `json:"breakdown"`
	Total        *float64     `json:"total"`
	Currency     string       `json:"currency"`
	Coverage     float64      `json:"coverage"`
	MatchOverall float64      `json:"match_overall"`
}
