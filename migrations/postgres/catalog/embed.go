// SPDX-License-Identifier: Apache-2.0

// Package catalog embeds the migrations creating the catalog index tables.
package catalog

import "embed"

//go:embed *.sql
var FS embed.FS
