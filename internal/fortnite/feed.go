// Package fortnite maps the third-party item-shop feed into a uniform item
// shape for display. The feed is a heterogeneous union of single cosmetics,
// bundles, and music tracks, with missing fields at every level, so the
// transform resolves each display field from a prioritized list of sources.
package fortnite

// Item is the uniform shop item shape the storefront displays.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Rarity      string `json:"rarity"`
	Price       int    `json:"price"`
	Image       string `json:"image"`
}

// Shop groups the transformed items into display sections. Every entry lands
// in All exactly once and in at most one of the category lists.
type Shop struct {
	All      []Item `json:"all"`
	Featured []Item `json:"featured"`
	Daily    []Item `json:"daily"`
	Special  []Item `json:"special"`
	Bundles  []Item `json:"bundles"`
}

// feedResponse mirrors the third-party payload. Every field may be absent.
type feedResponse struct {
	Data feedData `json:"data"`
}

type feedData struct {
	Entries []feedEntry `json:"entries"`
}

type feedEntry struct {
	OfferID      string      `json:"offerId"`
	DevName      string      `json:"devName"`
	FinalPrice   int         `json:"finalPrice"`
	RegularPrice int         `json:"regularPrice"`
	Bundle       *feedBundle `json:"bundle"`
	Items        []feedItem  `json:"brItems"`
	Tracks       []feedTrack `json:"tracks"`
	Layout       *feedLayout `json:"layout"`
}

type feedBundle struct {
	Name  string `json:"name"`
	Info  string `json:"info"`
	Image string `json:"image"`
}

type feedItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        feedDisplay `json:"type"`
	Rarity      feedDisplay `json:"rarity"`
	Images      feedImages  `json:"images"`
}

type feedDisplay struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

type feedImages struct {
	SmallIcon string `json:"smallIcon"`
	Icon      string `json:"icon"`
	Featured  string `json:"featured"`
}

type feedTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AlbumArt string `json:"albumArt"`
}

type feedLayout struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}
