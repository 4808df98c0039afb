package executors

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/dop251/goja"
)

// Kind tags the shape of a script's return value
type Kind int

const (
	KindAbsent Kind = iota
	KindBool
	KindNumeric
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindBool:
		return "bool"
	case KindNumeric:
		return "numeric"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the classified return value of a script
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	// Text is the printable form, set for numeric and other values
	Text string
}

// Absent is the value of a script that produced nothing
var Absent = Value{Kind: KindAbsent}

// Classify converts a runtime value into a Value. undefined and null are absent.
func Classify(v goja.Value) Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return Absent
	}

	switch exported := v.Export().(type) {
	case bool:
		return Value{Kind: KindBool, Bool: exported}
	case int64:
		return Value{Kind: KindNumeric, Number: float64(exported), Text: v.String()}
	case float64:
		return Value{Kind: KindNumeric, Number: exported, Text: v.String()}
	case *big.Int:
		n, _ := new(big.Float).SetInt(exported).Float64()
		if exported.Sign() != 0 && n == 0 {
			n = float64(exported.Sign())
		}
		return Value{Kind: KindNumeric, Number: n, Text: exported.String()}
	}

	return Value{Kind: KindOther, Text: formatValue(v)}
}

// Interpret maps a script value to the step outcome. Numeric and other values
// are reported on out as "Script returned: <value>".
func Interpret(v Value, out io.Writer) bool {
	switch v.Kind {
	case KindAbsent:
		return true
	case KindBool:
		return v.Bool
	case KindNumeric:
		reportValue(out, v)
		return v.Number == 0
	default:
		reportValue(out, v)
		return true
	}
}

func reportValue(out io.Writer, v Value) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "Script returned: %s\n", v.Text)
}

// formatValue renders objects and arrays as JSON and everything else the way
// the runtime converts it to a string
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		if v == nil {
			return "undefined"
		}
		return v.String()
	}

	switch exported := v.Export().(type) {
	case map[string]interface{}, []interface{}:
		if blob, err := json.Marshal(exported); err == nil {
			return string(blob)
		}
	}
	return v.String()
}
