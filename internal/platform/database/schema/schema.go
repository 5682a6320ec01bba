// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by data/migrations.
//
// Stores that build SQL from these descriptors break at compile time, not at
// query time, when a column is renamed.
package schema

import (
	"strconv"
	"strings"
)

// Placeholders returns "$1, $2, ..., $n".
func Placeholders(n int) string {
	var builder strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			builder.WriteString(", ")
		}
		builder.WriteString("$")
		builder.WriteString(strconv.Itoa(i))
	}
	return builder.String()
}
