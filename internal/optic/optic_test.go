package optic

import (
	"testing"

	"github.com/danslapman/stubbery/internal/jsn"
)

func TestParseAndRender(t *testing.T) {
	o, err := Parse("a.[2].b")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []PathPart{Field("a"), Index(2), Field("b")}
	if len(o.Parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(o.Parts), len(want))
	}
	for i := range want {
		if o.Parts[i] != want[i] {
			t.Errorf("part %d = %+v, want %+v", i, o.Parts[i], want[i])
		}
	}
	if got := o.ToJSONPath(); got != "$.a[2].b" {
		t.Errorf("ToJSONPath() = %q, want %q", got, "$.a[2].b")
	}
	if got := o.String(); got != "a.[2].b" {
		t.Errorf("String() = %q, want %q", got, "a.[2].b")
	}
}

func TestGetAllTraverse(t *testing.T) {
	root, _ := jsn.Parse([]byte(`{"items":[{"name":"a"},{"name":"b"}]}`))
	o := MustParse("items.$.name")
	got := GetAll(root, o)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if s, _ := got[0].AsString(); s != "a" {
		t.Errorf("first = %q, want a", s)
	}
}

func TestTraverseHumanFormRoundTrips(t *testing.T) {
	o := MustParse("items.$.name")
	if got := o.String(); got != "items.$.name" {
		t.Errorf("String() = %q, want %q", got, "items.$.name")
	}
	if got := o.ToJSONPath(); got != "$.items[*].name" {
		t.Errorf("ToJSONPath() = %q, want %q", got, "$.items[*].name")
	}
}

func TestValidatePureTraverseIsArrayCheck(t *testing.T) {
	empty, _ := jsn.Parse([]byte(`[]`))
	o := MustParse("$")
	if !Validate(empty, o) {
		t.Errorf("pure traverse over empty array should validate true")
	}
	notArr, _ := jsn.Parse([]byte(`{}`))
	if Validate(notArr, o) {
		t.Errorf("pure traverse over non-array should validate false")
	}
}

func TestSetTraverseAppliesToEveryElement(t *testing.T) {
	root, _ := jsn.Parse([]byte(`{"items":[{"v":1},{"v":2}]}`))
	got := Set(root, MustParse("items.$.v"), jsn.Signed(99))
	arr, _ := got.Get("items")
	elems, _ := arr.AsArray()
	for i, elem := range elems {
		v, _ := elem.Get("v")
		n, _ := v.AsSigned()
		if n != 99 {
			t.Errorf("items[%d].v = %d, want 99", i, n)
		}
	}
}

func TestPruneTraverseReplacesArrayWithNull(t *testing.T) {
	root, _ := jsn.Parse([]byte(`{"items":[1,2,3]}`))
	got := Prune(root, MustParse("items.$"))
	items, ok := got.Get("items")
	if !ok {
		t.Fatalf("expected items key to survive")
	}
	if !items.IsNull() {
		t.Errorf("items = %#v, want null", items)
	}
}

func TestPruneTraverseIsIdempotent(t *testing.T) {
	root, _ := jsn.Parse([]byte(`{"items":[1,2,3]}`))
	o := MustParse("items.$")
	once := Prune(root, o)
	twice := Prune(once, o)
	if once.String() != twice.String() {
		t.Errorf("prune(prune(D,O)) != prune(D,O): %s vs %s", once.String(), twice.String())
	}
}

func TestSetCreatesMissingStructure(t *testing.T) {
	root := jsn.EmptyObject()
	o := MustParse("a.[2].b")
	got := Set(root, o, jsn.String("x"))
	a, ok := got.Get("a")
	if !ok || !a.IsArray() {
		t.Fatalf("expected field a to be an array, got %#v", got)
	}
	arr, _ := a.AsArray()
	if len(arr) != 3 {
		t.Fatalf("expected array length 3, got %d", len(arr))
	}
	b, ok := arr[2].Get("b")
	if !ok {
		t.Fatalf("expected arr[2].b to exist")
	}
	if s, _ := b.AsString(); s != "x" {
		t.Errorf("arr[2].b = %q, want x", s)
	}
}

func TestPruneRemovesField(t *testing.T) {
	root, _ := jsn.Parse([]byte(`{"a":1,"b":2}`))
	got := Prune(root, MustParse("a"))
	if _, ok := got.Get("a"); ok {
		t.Errorf("expected a to be pruned")
	}
	if v, ok := got.Get("b"); !ok {
		t.Errorf("expected b to survive")
	} else if i, _ := v.AsSigned(); i != 2 {
		t.Errorf("b = %v, want 2", i)
	}
}
