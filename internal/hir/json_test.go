package hir

import "testing"

const sampleJSON = `{
  "name": "mathlib",
  "constants": [
    {"name": "SCALE", "type": {"kind": "int"},
     "value": {"kind": "literal", "value": {"kind": "int", "value": 10}}}
  ],
  "functions": [
    {
      "name": "scale",
      "params": [{"name": "x", "type": {"kind": "int"}}],
      "ret": {"kind": "int"},
      "properties": {"can_fail": false},
      "annotations": {
        "optimization_level": "aggressive",
        "performance_hints": [{"kind": "unroll_loops", "factor": 4}]
      },
      "body": [
        {"kind": "return",
         "value": {"kind": "binary", "op": "*",
                   "left": {"kind": "var", "name": "x"},
                   "right": {"kind": "var", "name": "SCALE"}}}
      ]
    }
  ],
  "classes": [
    {
      "name": "Point",
      "is_dataclass": true,
      "fields": [
        {"name": "x", "type": {"kind": "float"}},
        {"name": "y", "type": {"kind": "float"}}
      ]
    }
  ]
}`

func TestDecodeModule(t *testing.T) {
	m, err := DecodeModule([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}

	if m.Name != "mathlib" {
		t.Errorf("name = %q", m.Name)
	}

	if len(m.Constants) != 1 || m.Constants[0].Name != "SCALE" {
		t.Fatalf("constants = %+v", m.Constants)
	}
	lit := m.Constants[0].Value.(*LiteralExpr).Value.(*IntLit)
	if lit.Value != 10 {
		t.Errorf("SCALE = %d", lit.Value)
	}

	if len(m.Functions) != 1 {
		t.Fatalf("functions = %d", len(m.Functions))
	}
	f := m.Functions[0]
	if f.Annotations.OptimizationLevel != OptAggressive {
		t.Errorf("opt level = %v", f.Annotations.OptimizationLevel)
	}
	if !f.Annotations.HasHint(HintUnrollLoops) {
		t.Error("unroll hint lost in decoding")
	}
	ret, ok := f.Body[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("body[0] = %T", f.Body[0])
	}
	bin := ret.Value.(*BinaryExpr)
	if bin.Op != OpMul {
		t.Errorf("op = %v, want OpMul", bin.Op)
	}

	if len(m.Classes) != 1 || !m.Classes[0].IsDataclass || len(m.Classes[0].Fields) != 2 {
		t.Errorf("class = %+v", m.Classes[0])
	}
}

func TestDecodeModuleRejectsUnknownKinds(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bad stmt kind", `{"name":"m","functions":[{"name":"f","body":[{"kind":"goto"}]}]}`},
		{"bad type kind", `{"name":"m","functions":[{"name":"f","params":[{"name":"p","type":{"kind":"quaternion"}}]}]}`},
		{"bad operator", `{"name":"m","functions":[{"name":"f","body":[{"kind":"expr","value":{"kind":"binary","op":"<=>","left":{"kind":"literal","value":{"kind":"int","value":1}},"right":{"kind":"literal","value":{"kind":"int","value":2}}}}]}]}`},
		{"malformed json", `{"name":`},
	}

	for _, c := range cases {
		if _, err := DecodeModule([]byte(c.in)); err == nil {
			t.Errorf("%s: decode succeeded", c.name)
		}
	}
}

func TestDecodeMissingParamTypeDefaultsToUnknown(t *testing.T) {
	m, err := DecodeModule([]byte(`{"name":"m","functions":[{"name":"f","params":[{"name":"p"}]}]}`))
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}

	if _, ok := m.Functions[0].Params[0].Type.(*UnknownType); !ok {
		t.Errorf("untyped param = %T, want UnknownType", m.Functions[0].Params[0].Type)
	}
	if _, ok := m.Functions[0].RetType.(*NoneType); !ok {
		t.Errorf("missing ret = %T, want NoneType", m.Functions[0].RetType)
	}
}
