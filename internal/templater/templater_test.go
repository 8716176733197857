package templater

import (
	"testing"

	"github.com/danslapman/stubbery/internal/jsn"
)

func TestResolveWholeStringPreservesType(t *testing.T) {
	source, _ := jsn.Parse([]byte(`{"count": 3}`))
	got := Resolve("${count}", source)
	if i, ok := got.AsSigned(); !ok || i != 3 {
		t.Errorf("Resolve(whole) = %#v, want Signed(3)", got)
	}
}

func TestResolveCompositeStringifies(t *testing.T) {
	source, _ := jsn.Parse([]byte(`{"id": 42}`))
	got := Resolve("order-${id}", source)
	s, ok := got.AsString()
	if !ok || s != "order-42" {
		t.Errorf("Resolve(composite) = %#v, want String(order-42)", got)
	}
}

func TestResolveStringCastModifier(t *testing.T) {
	source, _ := jsn.Parse([]byte(`{"flag": true}`))
	got := Resolve("$:{flag}", source)
	s, ok := got.AsString()
	if !ok || s != "true" {
		t.Errorf("Resolve($:) = %#v, want String(true)", got)
	}
}

func TestResolveMissingOpticWholeStringFallsBackToLiteralExpr(t *testing.T) {
	source := jsn.EmptyObject()
	got := Resolve("${missing}", source)
	s, ok := got.AsString()
	if !ok || s != "${missing}" {
		t.Errorf("Resolve(missing whole) = %#v, want the literal expression", got)
	}
}

func TestResolveMissingOpticCompositeFallsBackToLiteralPath(t *testing.T) {
	source := jsn.EmptyObject()
	got := Resolve("id-${missing}", source)
	s, ok := got.AsString()
	if !ok || s != "id-missing" {
		t.Errorf("Resolve(missing composite) = %#v, want id-missing", got)
	}
}
