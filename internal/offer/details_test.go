package offer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsMarshalFixedOrder(t *testing.T) {
	d := Details{Brand: "Zara", Size: "M", Condition: "good", Color: "blue", City: "Paris"}
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"BRAND":"Zara"},{"SIZE":"M"},{"CONDITION":"good"},{"COLOR":"blue"},{"CITY":"Paris"}]`, string(raw))

	var back Details
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}

func TestDetailsMarshalKeepsEmptyTags(t *testing.T) {
	raw, err := json.Marshal(Details{City: "Lyon"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"BRAND":""},{"SIZE":""},{"CONDITION":""},{"COLOR":""},{"CITY":"Lyon"}]`, string(raw))
}

func TestDetailsUnmarshalRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"short":        `[{"BRAND":"a"}]`,
		"out of order": `[{"SIZE":"M"},{"BRAND":"a"},{"CONDITION":""},{"COLOR":""},{"CITY":""}]`,
		"extra key":    `[{"BRAND":"a","SIZE":"M"},{"SIZE":"M"},{"CONDITION":""},{"COLOR":""},{"CITY":""}]`,
		"not array":    `{"BRAND":"a"}`,
	}
	for name, raw := range cases {
		var d Details
		assert.Error(t, json.Unmarshal([]byte(raw), &d), name)
	}
}

func TestPatchApply(t *testing.T) {
	base := Offer{
		Title:   "Jacket",
		Price:   40,
		Details: Details{Brand: "Zara", Size: "M", Condition: "good", Color: "blue", City: "Paris"},
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		o := base
		assert.Empty(t, Patch{}.Apply(&o))
		assert.Equal(t, base, o)
		assert.True(t, Patch{}.Empty())
	})

	t.Run("same values are not changes", func(t *testing.T) {
		o := base
		title := "Jacket"
		price := 40.0
		p := Patch{Title: &title, Price: &price, Attributes: map[Tag]string{TagBrand: "Zara"}}
		assert.Empty(t, p.Apply(&o))
		assert.False(t, p.Empty())
	})

	t.Run("single attribute", func(t *testing.T) {
		o := base
		changed := Patch{Attributes: map[Tag]string{TagBrand: "H&M"}}.Apply(&o)
		assert.Equal(t, []Field{FieldDetails}, changed)
		assert.Equal(t, Details{Brand: "H&M", Size: "M", Condition: "good", Color: "blue", City: "Paris"}, o.Details)
	})

	t.Run("scalars and attributes", func(t *testing.T) {
		o := base
		desc := "warm"
		price := 25.5
		changed := Patch{
			Description: &desc,
			Price:       &price,
			Attributes:  map[Tag]string{TagCity: "", TagColor: "red"},
		}.Apply(&o)
		assert.Equal(t, []Field{FieldDescription, FieldPrice, FieldDetails}, changed)
		assert.Equal(t, "warm", o.Description)
		assert.Equal(t, 25.5, o.Price)
		assert.Equal(t, "red", o.Details.Color)
		assert.Equal(t, "", o.Details.City)
	})
}
