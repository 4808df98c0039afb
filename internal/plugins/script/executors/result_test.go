package executors

import (
	"bytes"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	vm := goja.New()

	assert.Equal(t, Absent, Classify(nil))
	assert.Equal(t, Absent, Classify(goja.Undefined()))
	assert.Equal(t, Absent, Classify(goja.Null()))
	assert.Equal(t, Value{Kind: KindBool, Bool: true}, Classify(vm.ToValue(true)))
	assert.Equal(t, Value{Kind: KindNumeric, Number: 7, Text: "7"}, Classify(vm.ToValue(7)))
	assert.Equal(t, Value{Kind: KindNumeric, Number: 0.5, Text: "0.5"}, Classify(vm.ToValue(0.5)))
	assert.Equal(t, Value{Kind: KindOther, Text: "ok"}, Classify(vm.ToValue("ok")))
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		success bool
		log     string
	}{
		{name: "absent", value: Absent, success: true},
		{name: "true", value: Value{Kind: KindBool, Bool: true}, success: true},
		{name: "false", value: Value{Kind: KindBool}, success: false},
		{name: "zero", value: Value{Kind: KindNumeric, Text: "0"}, success: true, log: "Script returned: 0\n"},
		{name: "fraction is not zero", value: Value{Kind: KindNumeric, Number: 0.5, Text: "0.5"}, success: false, log: "Script returned: 0.5\n"},
		{name: "other", value: Value{Kind: KindOther, Text: "hello"}, success: true, log: "Script returned: hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.success, Interpret(tt.value, &out))
			assert.Equal(t, tt.log, out.String())
		})
	}

	assert.True(t, Interpret(Value{Kind: KindOther, Text: "x"}, nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "absent", KindAbsent.String())
	assert.Equal(t, "numeric", KindNumeric.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
