package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/germplasm-cli/internal/model"
	"github.com/sells-group/germplasm-cli/internal/normalize"
)

// Dedup keeps the first record for each (ID assigned, variety) key. When no
// record has an ID, or no record has a variety, the key is unusable for the
// whole dataset and records are compared on every field instead.
func Dedup(records []model.Fields) []model.Fields {
	keyFn := naturalKey
	if !keyUsable(records) {
		keyFn = identityKey
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]model.Fields, 0, len(records))
	for _, f := range records {
		k := keyFn(f)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

func keyUsable(records []model.Fields) bool {
	var hasID, hasVariety bool
	for _, f := range records {
		hasID = hasID || f.Has(model.FieldIDAssigned)
		hasVariety = hasVariety || f.Has(model.FieldVariety)
	}
	return hasID && hasVariety
}

func naturalKey(f model.Fields) string {
	return normalize.Text(f[model.FieldIDAssigned]) + "\x00" + normalize.Text(f[model.FieldVariety])
}

// identityKey encodes every non-empty field with its type.
func identityKey(f model.Fields) string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if !model.IsEmpty(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%T:%v\x00", k, f[k], f[k])
	}
	return b.String()
}
