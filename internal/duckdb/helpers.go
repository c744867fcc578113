package duckdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InterpolateQuery substitutes args into query for debug logging. The result
// is valid DuckDB SQL for the argument types used in this module; it must
// never be executed.
func InterpolateQuery(query string, args []any) string {
	for _, arg := range args {
		query = strings.Replace(query, "?", literal(arg), 1)
	}
	return strings.Join(strings.Fields(query), " ")
}

func literal(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	case time.Time:
		// Round(0) drops the monotonic clock reading.
		return "'" + v.Round(0).Format(time.RFC3339Nano) + "'"
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'"
	default:
		return fmt.Sprintf("'%v'", v)
	}
}
