package hclconfig

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fanengine/internal/value"
)

// ctyToValue converts an evaluated HCL expression result into a Value.
// Object/map key order follows cty's ElementIterator, which is sorted by
// key rather than source order; HCL object-constructor expressions do not
// themselves guarantee attribute order is preserved through evaluation, so
// callers that need exact source order for a mapping should not rely on
// this path (none of hclconfig's own blocks need it: "args" is merged with
// a method's default via value.Merge, which is order-independent).
func ctyToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return value.Null(), nil
	}

	t := v.Type()
	switch {
	case t == cty.Bool:
		return value.Bool(v.True()), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return value.Int(i), nil
		}
		f, _ := bf.Float64()
		return value.Float(f), nil
	case t == cty.String:
		return value.String(v.AsString()), nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		items := make([]value.Value, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			conv, err := ctyToValue(ev)
			if err != nil {
				return value.Null(), err
			}
			items = append(items, conv)
		}
		return value.List(items...), nil
	case t.IsObjectType() || t.IsMapType():
		b := value.NewMapBuilder()
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			conv, err := ctyToValue(ev)
			if err != nil {
				return value.Null(), err
			}
			b.Set(k.AsString(), conv)
		}
		return b.Build(), nil
	default:
		return value.Null(), fmt.Errorf("hclconfig: unsupported HCL value type %s", t.FriendlyName())
	}
}
