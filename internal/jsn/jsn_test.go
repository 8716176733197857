package jsn

import "testing"

func TestParseSplitsIntAndFloat(t *testing.T) {
	v, err := Parse([]byte(`{"a": ["b", 3, 1.5, false, null]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obj, _, ok := v.AsObject()
	if !ok {
		t.Fatalf("expected object")
	}
	arr, ok := obj["a"].AsArray()
	if !ok || len(arr) != 5 {
		t.Fatalf("expected 5-element array, got %#v", arr)
	}
	if i, ok := arr[1].AsSigned(); !ok || i != 3 {
		t.Errorf("expected Signed(3), got %#v", arr[1])
	}
	if f, ok := arr[2].AsFloat(); !ok || f != 1.5 {
		t.Errorf("expected Float(1.5), got %#v", arr[2])
	}
}

func TestStringRendersCanonicalForm(t *testing.T) {
	v, err := Parse([]byte(`{"a":["b",3,false,null]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := v.String()
	want := `{"a": ["b", 3, false, null]}`
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestValueRoundTripsThroughScan(t *testing.T) {
	v, _ := Parse([]byte(`{"x":1}`))
	driverVal, err := v.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var scanned Jsn
	if err := scanned.Scan(driverVal); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	obj, _, _ := scanned.AsObject()
	if i, ok := obj["x"].AsSigned(); !ok || i != 1 {
		t.Errorf("round trip lost value: %#v", obj["x"])
	}
}
