package sqldb

import (
	"strconv"
	"strings"
)

// PlaceholderPrefixForDBType maps a backend type to its parameter-marker
// prefix. '?' means anonymous markers as-is.
var PlaceholderPrefixForDBType = map[string]byte{
	"mysql": '?',
	"pgsql": '$',
}

// PlaceholderPrefix picks the marker prefix for a backend, '?' when unknown.
func PlaceholderPrefix(dbType string) byte {
	if p, ok := PlaceholderPrefixForDBType[dbType]; ok {
		return p
	}
	return '?'
}

// ReplaceStaticPlaceholders rewrites anonymous '?' markers into ordinal ones
// ($1, $2, ...) for backends that number their parameters. Statements are
// written once with '?' and converted at load time; business code never
// string-interpolates SQL.
func ReplaceStaticPlaceholders(sql string, prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + 8)
	cnt := 1
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			b.WriteByte(sql[i])
			continue
		}
		b.WriteByte(prefix)
		b.WriteString(strconv.Itoa(cnt))
		cnt++
	}
	return b.String()
}
