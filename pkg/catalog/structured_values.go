// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// TierPrice is one quantity based price rule. Values are kept as provided so
// they are indexed with their original representation.
type TierPrice struct {
	PriceID       any `mapstructure:"price_id"`
	WebsiteID     any `mapstructure:"website_id"`
	AllGroups     any `mapstructure:"all_groups"`
	CustomerGroup any `mapstructure:"cust_group"`
	PriceQty      any `mapstructure:"price_qty"`
	WebsitePrice  any `mapstructure:"website_price"`
	Price         any `mapstructure:"price"`
}

// IsAllGroups reports whether the tier price applies to every customer group,
// either through the all_groups flag or the all groups sentinel. Numeric
// strings are compared by value.
func (tp *TierPrice) IsAllGroups() bool {
	if Truthy(tp.AllGroups) {
		return true
	}
	n, ok := toFloat(tp.CustomerGroup)
	return ok && n == float64(CustomerGroupAll)
}

const MediaTypeImage = "image"

type MediaEntry struct {
	File             any    `mapstructure:"file"`
	Position         any    `mapstructure:"position"`
	Disabled         any    `mapstructure:"disabled"`
	Label            any    `mapstructure:"label"`
	MediaType        string `mapstructure:"media_type"`
	VideoTitle       any    `mapstructure:"video_title"`
	VideoURL         any    `mapstructure:"video_url"`
	VideoDescription any    `mapstructure:"video_description"`
	VideoMetadata    any    `mapstructure:"video_metadata"`
	VideoProvider    any    `mapstructure:"video_provider"`
}

func (m *MediaEntry) IsImage() bool {
	return m.MediaType == MediaTypeImage
}

// FilePath returns the entry file as a string for role matching.
func (m *MediaEntry) FilePath() string {
	return Stringify(m.File)
}

var (
	mediaImageKeys = []string{"file", "position", "disabled", "label", "media_type"}
	mediaVideoKeys = append(append([]string{}, mediaImageKeys...),
		"video_title", "video_url", "video_description", "video_metadata", "video_provider")
	tierPriceKeys = []string{"price_id", "website_id", "all_groups", "cust_group", "price_qty", "website_price", "price"}
)

// StockStatus is the quantity and stock status of an item. When the raw value
// is a scalar, it is used both as the quantity and as the stock flag.
type StockStatus struct {
	InStock bool
	Qty     any
}

// DecodeTierPrices decodes a tier price list payload.
func DecodeTierPrices(value any) ([]TierPrice, error) {
	if tps, ok := value.([]TierPrice); ok {
		return tps, nil
	}
	entries, err := toList(AttributeTierPrice, value)
	if err != nil {
		return nil, err
	}

	tierPrices := make([]TierPrice, 0, len(entries))
	for i, entry := range entries {
		tp := TierPrice{}
		if err := decodeStrict(AttributeTierPrice, i, entry, &tp, tierPriceKeys); err != nil {
			return nil, err
		}
		tierPrices = append(tierPrices, tp)
	}
	return tierPrices, nil
}

const mediaGalleryImagesKey = "images"

// DecodeMediaGallery decodes a media gallery payload. Both the
// {"images": ...} wrapper and a bare entry list are accepted. Images may be a
// list or an object keyed by value id; objects decoded without key order are
// sorted by value id.
func DecodeMediaGallery(value any) ([]MediaEntry, error) {
	if entries, ok := value.([]MediaEntry); ok {
		return entries, nil
	}
	if m, ok := value.(map[string]any); ok {
		images, found := m[mediaGalleryImagesKey]
		if !found {
			return nil, nil
		}
		value = images
		if byID, ok := images.(map[string]any); ok {
			value = entriesByID(byID)
		}
	}
	entries, err := toList(AttributeMediaGallery, value)
	if err != nil {
		return nil, err
	}

	media := make([]MediaEntry, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			return nil, ErrMalformedValue{Attribute: AttributeMediaGallery, Index: i, Reason: fmt.Sprintf("expected an object, got %T", entry)}
		}
		requiredKeys := mediaVideoKeys
		if mediaType, _ := raw["media_type"].(string); mediaType == MediaTypeImage {
			requiredKeys = mediaImageKeys
		}
		me := MediaEntry{}
		if err := decodeStrict(AttributeMediaGallery, i, raw, &me, requiredKeys); err != nil {
			return nil, err
		}
		media = append(media, me)
	}
	return media, nil
}

// DecodeStockStatus decodes the quantity and stock status payload.
func DecodeStockStatus(value any) (*StockStatus, error) {
	switch v := value.(type) {
	case *StockStatus:
		return v, nil
	case StockStatus:
		return &v, nil
	case map[string]any:
		inStock, found := v["is_in_stock"]
		if !found {
			return nil, ErrMalformedValue{Attribute: AttributeQtyAndStock, Index: -1, Field: "is_in_stock", Reason: "missing field"}
		}
		qty, found := v["qty"]
		if !found {
			return nil, ErrMalformedValue{Attribute: AttributeQtyAndStock, Index: -1, Field: "qty", Reason: "missing field"}
		}
		return &StockStatus{InStock: Truthy(inStock), Qty: qty}, nil
	case []any:
		return nil, ErrMalformedValue{Attribute: AttributeQtyAndStock, Index: -1, Reason: "unexpected list value"}
	default:
		return &StockStatus{InStock: Truthy(v), Qty: v}, nil
	}
}

func toList(attribute string, value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		list := make([]any, 0, len(v))
		for _, m := range v {
			list = append(list, m)
		}
		return list, nil
	default:
		return nil, ErrMalformedValue{Attribute: attribute, Index: -1, Reason: fmt.Sprintf("expected a list, got %T", value)}
	}
}

func entriesByID(m map[string]any) []any {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		na, aok := toFloat(a)
		nb, bok := toFloat(b)
		if aok && bok && na != nb {
			return cmp.Compare(na, nb)
		}
		return strings.Compare(a, b)
	})

	entries := make([]any, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, m[id])
	}
	return entries
}

func decodeStrict(attribute string, index int, input, output any, requiredKeys []string) error {
	md := mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   output,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return ErrMalformedValue{Attribute: attribute, Index: index, Reason: err.Error()}
	}

	// md.Unset has no stable order, report the first missing required key
	unset := make(map[string]struct{}, len(md.Unset))
	for _, k := range md.Unset {
		unset[k] = struct{}{}
	}
	for _, k := range requiredKeys {
		if _, found := unset[k]; found {
			return ErrMalformedValue{Attribute: attribute, Index: index, Field: k, Reason: "missing field"}
		}
	}
	return nil
}

// Truthy reports whether a raw value is considered set: nil, false, zero
// numbers, "", "0" and empty lists or objects are not.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Stringify renders a raw scalar the way it is indexed.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case CustomerGroupID:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
