package signature

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// TagName is the struct tag key the mapping engine reads for field-level
// annotation metadata, fixing the syntactic form left open by the
// distilled spec (see SPEC_FULL.md §4.5/§6).
const TagName = "config"

// FieldTag holds the parsed `config:"..."` tag for one struct field,
// modeled directly on micheline/typeinfo.go's structFieldInfo parsing
// (comma-separated tokens, first is the name override, rest are
// key[=value] flags).
type FieldTag struct {
	Name    string
	Order   int
	HasOrder bool
	NoFail  bool
	Include bool
	Exclude bool
}

// ParseFieldTag parses f's config tag, defaulting the name to f's Go field
// name rendered in snake_case via strcase (the default key-casing strategy
// used when no explicit config:"name" override is present).
func ParseFieldTag(f reflect.StructField) FieldTag {
	ft := FieldTag{Name: strcase.ToSnake(f.Name)}
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return ft
	}
	if tag == "-" {
		ft.Exclude = true
		return ft
	}
	tokens := strings.Split(tag, ",")
	if tokens[0] != "" {
		ft.Name = tokens[0]
	}
	for _, flag := range tokens[1:] {
		kv := strings.SplitN(flag, "=", 2)
		switch kv[0] {
		case "order":
			if len(kv) == 2 {
				if n, err := strconv.Atoi(kv[1]); err == nil {
					ft.Order = n
					ft.HasOrder = true
				}
			}
		case "nofail":
			ft.NoFail = true
		case "include":
			ft.Include = true
		case "exclude":
			ft.Exclude = true
		}
	}
	return ft
}
