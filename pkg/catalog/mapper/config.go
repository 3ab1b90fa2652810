// SPDX-License-Identifier: Apache-2.0

package mapper

import "github.com/xataio/catalogsearch/pkg/catalog"

type Config struct {
	// SkipAttributes are appended to the reserved attribute codes that are
	// never mapped through the generic attribute path.
	SkipAttributes []string
	// SinglePassRoles resolves media roles while iterating the attribute
	// values, so a role attribute that comes after the media gallery is not
	// taken into account for it. By default all roles are resolved before the
	// media gallery is expanded.
	SinglePassRoles bool
}

// reservedAttributes have a dedicated expansion and are skipped by the generic
// attribute mapping.
var reservedAttributes = []string{
	catalog.AttributePrice,
	catalog.AttributeMediaGallery,
	catalog.AttributeTierPrice,
	catalog.AttributeQtyAndStock,
	catalog.AttributeGiftcardAmounts,
}

var mediaRoleAttributes = []string{
	catalog.RoleImage,
	catalog.RoleSmallImage,
	catalog.RoleThumbnail,
	catalog.RoleSwatchImage,
}

func (c *Config) skipList() map[string]struct{} {
	skip := make(map[string]struct{}, len(reservedAttributes))
	for _, code := range reservedAttributes {
		skip[code] = struct{}{}
	}
	if c == nil {
		return skip
	}
	for _, code := range c.SkipAttributes {
		skip[code] = struct{}{}
	}
	return skip
}

func (c *Config) singlePassRoles() bool {
	return c != nil && c.SinglePassRoles
}
