package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/stub"
)

func TestStubRoundTripsThroughJsn(t *testing.T) {
	times := 3
	original := stub.Stub{
		Scope:       stub.ScopeCountdown,
		Times:       &times,
		ServiceName: "billing",
		Name:        "charge-ok",
		Method:      stub.MethodPost,
		Path:        "/charge",
		Request: stub.RequestSpec{
			Mode:     stub.RequestJSON,
			JSONBody: jsn.Object([]string{"amount"}, map[string]jsn.Jsn{"amount": jsn.Signed(500)}),
		},
		Persist: []stub.PersistOp{
			{Optic: "lastAmount", Value: jsn.String("${amount}")},
		},
		Response: stub.ResponseSpec{
			Mode:       stub.ResponseJSON,
			StatusCode: 201,
			Headers:    map[string]string{"X-Request-Id": "abc"},
			JSONBody:   jsn.Object([]string{"ok"}, map[string]jsn.Jsn{"ok": jsn.Bool(true)}),
			IsTemplate: true,
			Delay:      250 * time.Millisecond,
		},
		Callback: &stub.Callback{
			URL:    "http://downstream/notify",
			Method: stub.MethodPost,
			Body:   stub.ResponseSpec{Mode: stub.ResponseRaw, StatusCode: 200, RawBody: "notified"},
		},
	}

	doc := StubToJsn(original)
	reloaded, err := StubSpecFromJsn(doc)
	assert.NoError(t, err)

	assert.Equal(t, original.ServiceName, reloaded.ServiceName)
	assert.Equal(t, original.Request.Mode, reloaded.Request.Mode)
	assert.Equal(t, original.Request.JSONBody.String(), reloaded.Request.JSONBody.String())
	assert.Len(t, reloaded.Persist, 1)
	assert.Equal(t, "lastAmount", reloaded.Persist[0].Optic)
	assert.Equal(t, original.Response.StatusCode, reloaded.Response.StatusCode)
	assert.Equal(t, original.Response.Headers["X-Request-Id"], reloaded.Response.Headers["X-Request-Id"])
	assert.True(t, reloaded.Response.IsTemplate)
	assert.Equal(t, original.Response.Delay, reloaded.Response.Delay)
	assert.NotNil(t, reloaded.Callback)
	assert.Equal(t, original.Callback.URL, reloaded.Callback.URL)
}

func TestPredicateRoundTripsThroughJsn(t *testing.T) {
	pred, err := predicate.New(map[string][]predicate.Condition{
		"status": {{Keyword: predicate.Eq, Arg: jsn.String("active")}},
	})
	assert.NoError(t, err)

	doc := PredicateToJsn(pred)
	reloaded, err := PredicateFromJsn(doc)
	assert.NoError(t, err)
	assert.NotNil(t, reloaded)

	ok, err := reloaded.Validate(jsn.Object([]string{"status"}, map[string]jsn.Jsn{"status": jsn.String("active")}))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestPredicateFromJsnAbsentSpecIsNil(t *testing.T) {
	reloaded, err := PredicateFromJsn(jsn.Null())
	assert.NoError(t, err)
	assert.Nil(t, reloaded)
}

func TestNewStubFromJsnRejectsInvalidPersistOptic(t *testing.T) {
	doc := jsn.Object([]string{"method", "path", "persist", "response"}, map[string]jsn.Jsn{
		"method": jsn.String("GET"),
		"path":   jsn.String("/x"),
		"persist": jsn.Array([]jsn.Jsn{
			jsn.Object([]string{"optic", "value"}, map[string]jsn.Jsn{
				"optic": jsn.String("..bad.."),
				"value": jsn.String("v"),
			}),
		}),
		"response": jsn.Object([]string{"mode", "rawBody"}, map[string]jsn.Jsn{
			"mode": jsn.String("raw"), "rawBody": jsn.String("ok"),
		}),
	})

	_, err := NewStubFromJsn(doc)
	assert.Error(t, err)
}
