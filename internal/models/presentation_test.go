package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutType_Slots(t *testing.T) {
	assert.Equal(t, 1, LayoutOneCol.Slots())
	assert.Equal(t, 2, LayoutTwoCol.Slots())
	assert.Equal(t, 3, LayoutThreeCol.Slots())
	assert.Equal(t, 4, LayoutFourQuad.Slots())
	assert.Equal(t, 1, LayoutType("").Slots())
}

func TestReshape_PadThenTruncate(t *testing.T) {
	three := Reshape([]string{"hello"}, LayoutThreeCol)
	assert.Equal(t, []string{"hello", "", ""}, three)

	one := Reshape(three, LayoutOneCol)
	assert.Equal(t, []string{"hello"}, one)
}

func TestReshape_DoesNotAlias(t *testing.T) {
	in := []string{"a", "b"}
	out := Reshape(in, LayoutTwoCol)
	out[0] = "changed"
	assert.Equal(t, "a", in[0])
}

func TestSlide_Normalize(t *testing.T) {
	s := Slide{ID: "s1", Contents: []string{"a", "b", "c"}}
	n := s.Normalize()
	assert.Equal(t, LayoutOneCol, n.LayoutType)
	assert.Equal(t, []string{"a"}, n.Contents)
	assert.Len(t, s.Contents, 3, "original must be untouched")
}

func TestDraft_LayoutChangeRoundTrip(t *testing.T) {
	original := Slide{ID: "s1", Title: "Hymn", Contents: []string{"hello"}, LayoutType: LayoutOneCol}
	d := NewDraft(original)

	d.SetLayout(LayoutThreeCol)
	assert.Equal(t, []string{"hello", "", ""}, d.Slide().Contents)

	d.SetContent(2, "third")
	d.SetLayout(LayoutOneCol)
	got := d.Slide()
	assert.Equal(t, []string{"hello"}, got.Contents)
	assert.Equal(t, LayoutOneCol, got.LayoutType)

	assert.Equal(t, []string{"hello"}, original.Contents, "draft must not write through")
}

func TestDraft_DefaultsForLegacySlides(t *testing.T) {
	d := NewDraft(Slide{ID: "s1"})
	got := d.Slide()
	assert.Equal(t, LayoutOneCol, got.LayoutType)
	assert.Equal(t, []string{""}, got.Contents)
}

func TestDraft_IgnoresInvalidInput(t *testing.T) {
	d := NewDraft(Slide{ID: "s1", Contents: []string{"x"}, LayoutType: LayoutOneCol})
	d.SetLayout("5-col")
	d.SetContent(3, "nope")
	assert.Equal(t, []string{"x"}, d.Slide().Contents)
}

func TestMessage_SlideChangeNullIsExplicit(t *testing.T) {
	data, err := json.Marshal(SlideChange(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SLIDE_CHANGE","slide":null}`, string(data))
}

func TestMessage_RequestSlideHasNoPayload(t *testing.T) {
	data, err := json.Marshal(RequestSlide())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"REQUEST_SLIDE"}`, string(data))
}

func TestMessage_SlideChangeCarriesEntry(t *testing.T) {
	entry := &QueueEntry{
		Slide:   Slide{ID: "s1", Title: "Welcome", Contents: []string{"Hi"}, LayoutType: LayoutOneCol, Type: SlideTypeSlide},
		QueueID: "q1",
	}
	data, err := json.Marshal(SlideChange(entry))
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MessageSlideChange, decoded.Type)
	require.NotNil(t, decoded.Slide)
	assert.Equal(t, "q1", decoded.Slide.QueueID)
	assert.Equal(t, "Welcome", decoded.Slide.Title)
}
