// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"strconv"
)

type (
	ItemID          int64
	StoreID         int64
	WebsiteID       int64
	CustomerGroupID int64
	CategoryID      int64
)

func (id ItemID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id StoreID) String() string { return strconv.FormatInt(int64(id), 10) }

// CustomerGroupAll is the customer group id used by tier prices that apply to
// every customer group.
const CustomerGroupAll CustomerGroupID = 32000

// Attribute codes with a structured payload or a dedicated expansion.
const (
	AttributePrice           = "price"
	AttributeMediaGallery    = "media_gallery"
	AttributeTierPrice       = "tier_price"
	AttributeQtyAndStock     = "quantity_and_stock_status"
	AttributeGiftcardAmounts = "giftcard_amounts"
)

// Media role attribute codes. Each one holds the file assigned to the role.
const (
	RoleImage       = "image"
	RoleSmallImage  = "small_image"
	RoleThumbnail   = "thumbnail"
	RoleSwatchImage = "swatch_image"
)

// ValueSuffix marks attribute codes that are already in their indexable form.
const ValueSuffix = "_value"

// Backend and frontend types that drive the value transform.
const (
	BackendDatetime  = "datetime"
	BackendTimestamp = "timestamp"

	InputDate        = "date"
	InputMultiselect = "multiselect"
)

type AttributeMetadata struct {
	Code          string `yaml:"code" json:"code"`
	BackendType   string `yaml:"backend_type" json:"backend_type"`
	FrontendInput string `yaml:"frontend_input" json:"frontend_input"`
}

func (m *AttributeMetadata) IsDate() bool {
	return m.BackendType == BackendDatetime ||
		m.BackendType == BackendTimestamp ||
		m.FrontendInput == InputDate
}

func (m *AttributeMetadata) IsMultiselect() bool {
	return m.FrontendInput == InputMultiselect
}

type Store struct {
	ID        StoreID   `yaml:"id" json:"id"`
	WebsiteID WebsiteID `yaml:"website_id" json:"website_id"`
	Code      string    `yaml:"code" json:"code"`
	// Timezone is an IANA zone name. Empty means UTC.
	Timezone string `yaml:"timezone" json:"timezone"`
}

// FieldContext carries the store/locale context used to resolve output field
// names.
type FieldContext struct {
	Type   string
	Locale string
}

// PriceIndex holds the indexed final price per customer group for each item.
type PriceIndex map[ItemID]map[CustomerGroupID]float64

// CategoryIndex holds the category memberships for each item.
type CategoryIndex map[ItemID]CategoryRecord

type CategoryRecord struct {
	Memberships []CategoryMembership
	// Flat holds fields already flattened by the provider. They are only used
	// when there are no memberships.
	Flat map[string]any
}

type CategoryMembership struct {
	ID       CategoryID `yaml:"id" json:"id"`
	Position int64      `yaml:"position" json:"position"`
	Name     string     `yaml:"name" json:"name"`
}

// IndexDataProvider retrieves the raw index data for catalog items.
type IndexDataProvider interface {
	GetFullProductIndexData(ctx context.Context, itemID ItemID, seed *AttributeValues) (*AttributeValues, error)
	GetPriceIndexData(ctx context.Context, itemIDs []ItemID, storeID StoreID) (PriceIndex, error)
	GetFullCategoryProductIndexData(ctx context.Context, storeID StoreID, itemIDs []ItemID) (CategoryIndex, error)
}

// AttributeLookup returns the metadata for an attribute code, or nil if the
// attribute is unknown.
type AttributeLookup interface {
	GetAttribute(ctx context.Context, code string) (*AttributeMetadata, error)
}

type FieldNameResolver interface {
	GetFieldName(ctx context.Context, code string, fieldCtx FieldContext) (string, error)
}

type DateFormatter interface {
	FormatDate(ctx context.Context, storeID StoreID, value any) (string, error)
}

type StoreResolver interface {
	GetStore(ctx context.Context, storeID StoreID) (*Store, error)
}
