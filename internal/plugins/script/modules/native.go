package modules

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/itchyny/gojq"
	yaml "gopkg.in/yaml.v3"
)

// Platform returns a registry carrying the modules bundled with the worker:
// "jq", "yaml" and "uuid".
func Platform() *Registry {
	r := NewRegistry()
	_ = r.RegisterNative("jq", jqModule)
	_ = r.RegisterNative("yaml", yamlModule)
	_ = r.RegisterNative("uuid", uuidModule)
	return r
}

// jqModule exposes query(filter, input) returning every result as an array
func jqModule(vm *goja.Runtime, exports *goja.Object) error {
	return exports.Set("query", func(call goja.FunctionCall) goja.Value {
		filter := call.Argument(0).String()
		results, err := RunJQ(filter, call.Argument(1).Export())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(results)
	})
}

// RunJQ evaluates a jq filter against a Go value
func RunJQ(filter string, input interface{}) ([]interface{}, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %s: %w", filter, err)
	}

	// gojq only accepts JSON-shaped values
	normalized, err := normalize(input)
	if err != nil {
		return nil, err
	}

	results := []interface{}{}
	iter := query.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("error evaluating jq filter %s: %w", filter, err)
		}
		results = append(results, v)
	}
	return results, nil
}

func normalize(v interface{}) (interface{}, error) {
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jq input is not JSON compatible: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("jq input is not JSON compatible: %w", err)
	}
	return out, nil
}

func yamlModule(vm *goja.Runtime, exports *goja.Object) error {
	if err := exports.Set("parse", func(call goja.FunctionCall) goja.Value {
		var out interface{}
		if err := yaml.Unmarshal([]byte(call.Argument(0).String()), &out); err != nil {
			panic(vm.NewGoError(fmt.Errorf("failed to parse yaml: %w", err)))
		}
		return vm.ToValue(out)
	}); err != nil {
		return err
	}

	return exports.Set("stringify", func(call goja.FunctionCall) goja.Value {
		out, err := yaml.Marshal(call.Argument(0).Export())
		if err != nil {
			panic(vm.NewGoError(fmt.Errorf("failed to encode yaml: %w", err)))
		}
		return vm.ToValue(string(out))
	})
}

func uuidModule(vm *goja.Runtime, exports *goja.Object) error {
	return exports.Set("v4", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(uuid.NewString())
	})
}
