package report

import (
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// attributeText renders an attribute value as JSON. Strings are written
// bare.
func attributeText(s *signal.Signal) string {
	v := s.Value
	if v.IsNull() || !v.IsWhollyKnown() {
		return ""
	}
	if v.Type() == cty.String {
		return v.AsString()
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return ""
	}
	return string(b)
}
