package sqlpredicate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
)

func TestTranslateEqualityProducesNumberedPlaceholder(t *testing.T) {
	spec := Spec{{Optic: optic.MustParse("status"), Keyword: Eq, Arg: jsn.String("active")}}

	out, err := Translate(spec, 1)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "$.status ?(@ == $1)", out[0].JSONPathExpr)
	assert.Equal(t, "active", out[0].Param)
}

func TestTranslateStartsWith(t *testing.T) {
	spec := Spec{{Optic: optic.MustParse("name"), Keyword: StartsWith, Arg: jsn.String("usr-")}}

	out, err := Translate(spec, 3)
	assert.NoError(t, err)
	assert.Equal(t, "$.name ?(@ starts with $3)", out[0].JSONPathExpr)
}

func TestTranslateRejectsNullArgument(t *testing.T) {
	spec := Spec{{Optic: optic.MustParse("count"), Keyword: Eq, Arg: jsn.Null()}}

	_, err := Translate(spec, 1)
	assert.Error(t, err)
}

func TestCombineExprsJoinsWithColumnAndAnd(t *testing.T) {
	translations := []Translation{
		{JSONPathExpr: "$.a ?(@ == $1)"},
		{JSONPathExpr: "$.b ?(@ == $2)"},
	}

	combined := CombineExprs(translations, "data")
	assert.Equal(t, `data @? '$.a ?(@ == $1)' AND data @? '$.b ?(@ == $2)'`, combined)
}
