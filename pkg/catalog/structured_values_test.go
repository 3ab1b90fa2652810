// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeTierPrices(t *testing.T) {
	t.Parallel()

	validEntry := func() map[string]any {
		return map[string]any{
			"price_id":      1,
			"website_id":    1,
			"all_groups":    true,
			"cust_group":    32000,
			"price_qty":     "2",
			"website_price": "9.99",
			"price":         "9.99",
		}
	}

	tests := []struct {
		name  string
		value any

		wantTierPrices []TierPrice
		wantErrField   string
		wantErr        bool
	}{
		{
			name:           "nil value",
			value:          nil,
			wantTierPrices: []TierPrice{},
		},
		{
			name:  "list of entries",
			value: []any{validEntry()},
			wantTierPrices: []TierPrice{
				{
					PriceID:       1,
					WebsiteID:     1,
					AllGroups:     true,
					CustomerGroup: 32000,
					PriceQty:      "2",
					WebsitePrice:  "9.99",
					Price:         "9.99",
				},
			},
		},
		{
			name: "error - missing field",
			value: func() []any {
				entry := validEntry()
				delete(entry, "website_price")
				return []any{entry}
			}(),
			wantErrField: "website_price",
			wantErr:      true,
		},
		{
			name:    "error - not a list",
			value:   "9.99",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tierPrices, err := DecodeTierPrices(tc.value)
			if tc.wantErr {
				var malformedErr ErrMalformedValue
				require.True(t, errors.As(err, &malformedErr))
				require.Equal(t, AttributeTierPrice, malformedErr.Attribute)
				require.Equal(t, tc.wantErrField, malformedErr.Field)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantTierPrices, tierPrices)
		})
	}
}

func TestTierPrice_IsAllGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		group any
		want  bool
	}{
		{group: 32000, want: true},
		{group: int64(32000), want: true},
		{group: float64(32000), want: true},
		{group: "32000", want: true},
		{group: CustomerGroupAll, want: true},
		{group: 0, want: false},
		{group: "1", want: false},
		{group: "all", want: false},
		{group: nil, want: false},
	}

	for _, tc := range tests {
		tp := TierPrice{CustomerGroup: tc.group}
		require.Equal(t, tc.want, tp.IsAllGroups(), "group %v", tc.group)
	}

	flagged := TierPrice{AllGroups: true, CustomerGroup: 0}
	require.True(t, flagged.IsAllGroups())
	notFlagged := TierPrice{AllGroups: "0", CustomerGroup: 1}
	require.False(t, notFlagged.IsAllGroups())
}

func TestDecodeMediaGallery(t *testing.T) {
	t.Parallel()

	image := map[string]any{
		"file":       "/a.jpg",
		"position":   1,
		"disabled":   0,
		"label":      "front",
		"media_type": "image",
	}
	video := map[string]any{
		"file":              "/v.jpg",
		"position":          2,
		"disabled":          0,
		"label":             "clip",
		"media_type":        "external-video",
		"video_title":       "title",
		"video_url":         "https://example.com/v",
		"video_description": "desc",
		"video_metadata":    nil,
		"video_provider":    "youtube",
	}

	tests := []struct {
		name  string
		value any

		wantEntries  []MediaEntry
		wantErrField string
		wantErr      bool
	}{
		{
			name:  "images wrapper",
			value: map[string]any{"images": []any{image, video}},
			wantEntries: []MediaEntry{
				{File: "/a.jpg", Position: 1, Disabled: 0, Label: "front", MediaType: "image"},
				{
					File: "/v.jpg", Position: 2, Disabled: 0, Label: "clip", MediaType: "external-video",
					VideoTitle: "title", VideoURL: "https://example.com/v", VideoDescription: "desc",
					VideoMetadata: nil, VideoProvider: "youtube",
				},
			},
		},
		{
			name:        "bare list",
			value:       []any{image},
			wantEntries: []MediaEntry{{File: "/a.jpg", Position: 1, Disabled: 0, Label: "front", MediaType: "image"}},
		},
		{
			name:  "images keyed by value id",
			value: map[string]any{"images": map[string]any{"12": video, "9": image}},
			wantEntries: []MediaEntry{
				{File: "/a.jpg", Position: 1, Disabled: 0, Label: "front", MediaType: "image"},
				{
					File: "/v.jpg", Position: 2, Disabled: 0, Label: "clip", MediaType: "external-video",
					VideoTitle: "title", VideoURL: "https://example.com/v", VideoDescription: "desc",
					VideoMetadata: nil, VideoProvider: "youtube",
				},
			},
		},
		{
			name:        "wrapper without images",
			value:       map[string]any{"values": []any{}},
			wantEntries: nil,
		},
		{
			name: "error - video missing field",
			value: []any{map[string]any{
				"file":       "/v.jpg",
				"position":   2,
				"disabled":   0,
				"label":      "clip",
				"media_type": "external-video",
			}},
			wantErrField: "video_title",
			wantErr:      true,
		},
		{
			name:    "error - entry not an object",
			value:   []any{"/a.jpg"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			entries, err := DecodeMediaGallery(tc.value)
			if tc.wantErr {
				var malformedErr ErrMalformedValue
				require.True(t, errors.As(err, &malformedErr))
				require.Equal(t, AttributeMediaGallery, malformedErr.Attribute)
				require.Equal(t, 0, malformedErr.Index)
				if tc.wantErrField != "" {
					require.Equal(t, tc.wantErrField, malformedErr.Field)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantEntries, entries)
		})
	}
}

func TestDecodeStockStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any

		wantStatus *StockStatus
		wantErr    bool
	}{
		{
			name:       "record",
			value:      map[string]any{"is_in_stock": true, "qty": 5},
			wantStatus: &StockStatus{InStock: true, Qty: 5},
		},
		{
			name:       "record out of stock",
			value:      map[string]any{"is_in_stock": "0", "qty": 0},
			wantStatus: &StockStatus{InStock: false, Qty: 0},
		},
		{
			name:       "truthy scalar",
			value:      3,
			wantStatus: &StockStatus{InStock: true, Qty: 3},
		},
		{
			name:       "falsy scalar",
			value:      "0",
			wantStatus: &StockStatus{InStock: false, Qty: "0"},
		},
		{
			name:       "nil",
			value:      nil,
			wantStatus: &StockStatus{InStock: false, Qty: nil},
		},
		{
			name:    "error - record missing qty",
			value:   map[string]any{"is_in_stock": true},
			wantErr: true,
		},
		{
			name:    "error - list",
			value:   []any{1},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, err := DecodeStockStatus(tc.value)
			if tc.wantErr {
				var malformedErr ErrMalformedValue
				require.True(t, errors.As(err, &malformedErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, status)
		})
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	falsy := []any{nil, false, 0, int64(0), 0.0, "", "0", []any{}, map[string]any{}}
	for _, v := range falsy {
		require.False(t, Truthy(v), "value %#v", v)
	}

	truthy := []any{true, 1, int64(-1), 0.5, "a", "0.0", " ", []any{0}, map[string]any{"a": nil}}
	for _, v := range truthy {
		require.True(t, Truthy(v), "value %#v", v)
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  string
	}{
		{value: nil, want: ""},
		{value: "a,b", want: "a,b"},
		{value: true, want: "1"},
		{value: false, want: ""},
		{value: 12, want: "12"},
		{value: int64(-3), want: "-3"},
		{value: float64(5), want: "5"},
		{value: 9.99, want: "9.99"},
		{value: ItemID(42), want: "42"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, Stringify(tc.value), "value %#v", tc.value)
	}
}

func TestErrMalformedValue_Error(t *testing.T) {
	t.Parallel()

	require.Equal(t, "malformed value for tier_price[2].price: missing field",
		ErrMalformedValue{Attribute: "tier_price", Index: 2, Field: "price", Reason: "missing field"}.Error())
	require.Equal(t, "malformed value for quantity_and_stock_status: unexpected list value",
		ErrMalformedValue{Attribute: "quantity_and_stock_status", Index: -1, Reason: "unexpected list value"}.Error())
}
