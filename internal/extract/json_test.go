package extract

import (
	"encoding/json"
	"testing"
)

func TestDirect_PlainObject(t *testing.T) {
	raw, ok := Direct(`  {"overall": 90}  `)
	if !ok {
		t.Fatal("Direct failed on plain JSON")
	}
	if string(raw) != `{"overall": 90}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestDirect_RejectsProse(t *testing.T) {
	if _, ok := Direct("the score is 90"); ok {
		t.Error("Direct accepted prose")
	}
}

func TestFencedBlock_LabeledJSON(t *testing.T) {
	input := "Here is the result:\n```json\n{\"overall\": 88}\n```\nThanks!"
	raw, ok := FencedBlock(input)
	if !ok {
		t.Fatal("FencedBlock failed")
	}
	var v struct {
		Overall int `json:"overall"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Overall != 88 {
		t.Errorf("parsed %s, err %v", raw, err)
	}
}

func TestFencedBlock_UnlabeledFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	if _, ok := FencedBlock(input); !ok {
		t.Error("FencedBlock rejected unlabeled fence")
	}
}

func TestBalancedBraces_EmbeddedInProse(t *testing.T) {
	input := `The model says {"scores": {"overall": 70}} which is below threshold.`
	raw, ok := BalancedBraces(input)
	if !ok {
		t.Fatal("BalancedBraces failed")
	}
	if string(raw) != `{"scores": {"overall": 70}}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestBalancedBraces_BracesInsideStrings(t *testing.T) {
	input := `note {"msg": "use {braces} carefully", "n": 1} end`
	raw, ok := BalancedBraces(input)
	if !ok {
		t.Fatal("BalancedBraces failed on quoted braces")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Errorf("invalid extraction %s: %v", raw, err)
	}
	if v["msg"] != "use {braces} carefully" {
		t.Errorf("msg = %v", v["msg"])
	}
}

func TestBalancedBraces_EscapedQuotes(t *testing.T) {
	input := `{"msg": "she said \"hi\" {x}", "ok": true}`
	raw, ok := BalancedBraces(input)
	if !ok {
		t.Fatal("BalancedBraces failed on escaped quotes")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Errorf("invalid extraction: %v", err)
	}
}

func TestBalancedBraces_Array(t *testing.T) {
	raw, ok := BalancedBraces(`items: [1, 2, 3] done`)
	if !ok || string(raw) != "[1, 2, 3]" {
		t.Errorf("raw = %s, ok = %v", raw, ok)
	}
}

func TestRepaired_TrailingComma(t *testing.T) {
	raw, ok := Repaired(`{"a": 1, "b": [1, 2,],}`)
	if !ok {
		t.Fatal("Repaired failed on trailing commas")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Errorf("still invalid after repair: %v", err)
	}
}

func TestRepaired_SmartQuotes(t *testing.T) {
	raw, ok := Repaired("{“overall”: 75}")
	if !ok {
		t.Fatal("Repaired failed on smart quotes")
	}
	var v struct {
		Overall int `json:"overall"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Overall != 75 {
		t.Errorf("parsed %s, err %v", raw, err)
	}
}

func TestJSON_ChainPrefersDirect(t *testing.T) {
	raw, ok := JSON(`{"overall": 95}`)
	if !ok || string(raw) != `{"overall": 95}` {
		t.Errorf("raw = %s, ok = %v", raw, ok)
	}
}

func TestJSON_FallsThroughToFence(t *testing.T) {
	input := "Here is the result:\n```json\n{\"overall\": 88}\n```\nThanks!"
	raw, ok := JSON(input)
	if !ok {
		t.Fatal("chain failed")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	if v["overall"] != float64(88) {
		t.Errorf("overall = %v", v["overall"])
	}
}

func TestJSON_GarbageFails(t *testing.T) {
	if _, ok := JSON("no structured data here at all"); ok {
		t.Error("chain claimed success on garbage")
	}
}

func TestJSON_EmptyInput(t *testing.T) {
	if _, ok := JSON(""); ok {
		t.Error("chain claimed success on empty input")
	}
}
