package transport

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sandai/challonge/src/app/challonge"
)

// encodeParams flattens params into the query string the remote service
// expects: prefix[key]=value, and prefix[key][]=value for slices. Under a list
// prefix ending in "[]" every element becomes one prefix[][key] group, and
// groups are written element by element so multi-key lists pair up. Keys are
// sorted and nil values are skipped.
func encodeParams(prefix string, params challonge.Params) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	add := func(name, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if strings.HasSuffix(prefix, "[]") {
		columns := make([][]string, len(keys))
		rows := 0
		for i, k := range keys {
			items, isList := formatList(params[k])
			if !isList {
				items = []string{formatValue(params[k])}
			}
			columns[i] = items
			rows = max(rows, len(items))
		}
		for row := 0; row < rows; row++ {
			for i, k := range keys {
				if row < len(columns[i]) {
					add(prefix+"["+k+"]", columns[i][row])
				}
			}
		}
		return b.String()
	}

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "[" + k + "]"
		}
		items, isList := formatList(params[k])
		if !isList {
			add(name, formatValue(params[k]))
			continue
		}
		for _, item := range items {
			add(name+"[]", item)
		}
	}
	return b.String()
}

func formatList(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []int:
		out := make([]string, len(vv))
		for i, n := range vv {
			out[i] = strconv.Itoa(n)
		}
		return out, true
	case []int64:
		out := make([]string, len(vv))
		for i, n := range vv {
			out[i] = strconv.FormatInt(n, 10)
		}
		return out, true
	case []any:
		out := make([]string, len(vv))
		for i, item := range vv {
			out[i] = formatValue(item)
		}
		return out, true
	}
	return nil, false
}

// formatValue renders a scalar. Booleans are always lowercase.
func formatValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case time.Time:
		return vv.Format(time.RFC3339)
	case *time.Time:
		if vv == nil {
			return ""
		}
		return vv.Format(time.RFC3339)
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprint(vv)
	}
}

// routeOf replaces ids in path with {id} to keep metric cardinality bounded.
func routeOf(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil || (i == 1 && parts[0] == "tournaments") {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
