package fortnite

import (
	"fmt"
	"strings"
)

// typeColors keys the generated placeholder image by item type. Unknown
// types fall back to the "item" color.
var typeColors = map[string]string{
	"outfit":    "7c3aed",
	"emote":     "ec4899",
	"pickaxe":   "f59e0b",
	"glider":    "0ea5e9",
	"wrap":      "10b981",
	"backpack":  "6366f1",
	"bundle":    "eab308",
	"music":     "14b8a6",
	"item":      "64748b",
}

// transform maps every feed entry into the uniform item shape and buckets it
// into display sections.
func transform(resp *feedResponse) *Shop {
	shop := &Shop{}
	for _, e := range resp.Data.Entries {
		item := resolveItem(e)
		shop.All = append(shop.All, item)

		switch classify(e) {
		case sectionBundles:
			shop.Bundles = append(shop.Bundles, item)
		case sectionFeatured:
			shop.Featured = append(shop.Featured, item)
		case sectionDaily:
			shop.Daily = append(shop.Daily, item)
		case sectionSpecial:
			shop.Special = append(shop.Special, item)
		}
	}
	return shop
}

type section int

const (
	sectionFeatured section = iota
	sectionDaily
	sectionSpecial
	sectionBundles
)

// classify buckets an entry into exactly one section: bundle-carrying entries
// go to bundles, the rest by layout name with the layout index as tiebreaker.
func classify(e feedEntry) section {
	if e.Bundle != nil {
		return sectionBundles
	}
	var name string
	var index int
	if e.Layout != nil {
		name = strings.ToLower(e.Layout.Name)
		index = e.Layout.Index
	}
	switch {
	case strings.Contains(name, "featured"):
		return sectionFeatured
	case strings.Contains(name, "daily"):
		return sectionDaily
	case name == "" && index <= 1:
		return sectionFeatured
	default:
		return sectionSpecial
	}
}

// resolveItem extracts display fields from an entry, trying the bundle
// object first, then the first cosmetic, then the first track, then the
// devName pattern.
func resolveItem(e feedEntry) Item {
	var first *feedItem
	if len(e.Items) > 0 {
		first = &e.Items[0]
	}
	var track *feedTrack
	if len(e.Tracks) > 0 {
		track = &e.Tracks[0]
	}

	item := Item{
		ID:          resolveID(e, first, track),
		Name:        resolveName(e, first, track),
		Description: resolveDescription(e, first, track),
		Type:        resolveType(e, first, track),
		Rarity:      resolveRarity(first),
		Price:       resolvePrice(e),
	}
	item.Image = resolveImage(e, first, track, item.Type)
	return item
}

func resolveID(e feedEntry, first *feedItem, track *feedTrack) string {
	switch {
	case e.OfferID != "":
		return e.OfferID
	case first != nil && first.ID != "":
		return first.ID
	case track != nil && track.ID != "":
		return track.ID
	default:
		return e.DevName
	}
}

func resolveName(e feedEntry, first *feedItem, track *feedTrack) string {
	switch {
	case e.Bundle != nil && e.Bundle.Name != "":
		return e.Bundle.Name
	case first != nil && first.Name != "":
		return first.Name
	case track != nil && track.Title != "":
		return track.Title
	default:
		return nameFromDevName(e.DevName)
	}
}

func resolveDescription(e feedEntry, first *feedItem, track *feedTrack) string {
	switch {
	case e.Bundle != nil && e.Bundle.Info != "":
		return e.Bundle.Info
	case first != nil && first.Description != "":
		return first.Description
	case track != nil && track.Artist != "":
		return track.Artist
	default:
		return ""
	}
}

func resolveType(e feedEntry, first *feedItem, track *feedTrack) string {
	switch {
	case e.Bundle != nil:
		return "bundle"
	case first != nil && first.Type.Value != "":
		return strings.ToLower(first.Type.Value)
	case track != nil:
		return "music"
	default:
		return "item"
	}
}

func resolveRarity(first *feedItem) string {
	if first != nil {
		if first.Rarity.DisplayValue != "" {
			return first.Rarity.DisplayValue
		}
		if first.Rarity.Value != "" {
			return first.Rarity.Value
		}
	}
	return "Common"
}

func resolvePrice(e feedEntry) int {
	if e.FinalPrice > 0 {
		return e.FinalPrice
	}
	return e.RegularPrice
}

func resolveImage(e feedEntry, first *feedItem, track *feedTrack, itemType string) string {
	if e.Bundle != nil && e.Bundle.Image != "" {
		return e.Bundle.Image
	}
	if first != nil {
		for _, img := range []string{first.Images.Featured, first.Images.Icon, first.Images.SmallIcon} {
			if img != "" {
				return img
			}
		}
	}
	if track != nil && track.AlbumArt != "" {
		return track.AlbumArt
	}
	return placeholderImage(itemType)
}

// placeholderImage generates a placeholder URL keyed by the type color map.
func placeholderImage(itemType string) string {
	color, ok := typeColors[itemType]
	if !ok {
		color = typeColors["item"]
	}
	return fmt.Sprintf("https://placehold.co/512x512/%s/ffffff?text=%s", color, strings.ToUpper(itemType))
}

// nameFromDevName extracts a readable name from strings like
// "[VIRTUAL]1 x Sparkle Specialist for 1500 MtxCurrency".
func nameFromDevName(devName string) string {
	s := devName
	if i := strings.Index(s, " x "); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.LastIndex(s, " for "); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown Item"
	}
	return s
}
