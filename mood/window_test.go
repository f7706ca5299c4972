package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_EvictsOldestFirst(t *testing.T) {
	w := NewWindow(3)
	for _, m := range []Mood{Happy, Sad, Angry, Neutral, Fearful} {
		w.Push(m)
		assert.LessOrEqual(t, w.Len(), 3)
	}
	assert.Equal(t, []Mood{Angry, Neutral, Fearful}, w.Moods())
}

func TestWindow_AppendedLeavesOriginal(t *testing.T) {
	w := WindowOf(2, Happy)
	next := w.Appended(Sad)
	after := next.Appended(Angry)

	assert.Equal(t, []Mood{Happy}, w.Moods())
	assert.Equal(t, []Mood{Happy, Sad}, next.Moods())
	assert.Equal(t, []Mood{Sad, Angry}, after.Moods())
}

func TestWindow_MoodsIsACopy(t *testing.T) {
	w := WindowOf(2, Happy, Sad)
	got := w.Moods()
	got[0] = Angry
	assert.Equal(t, []Mood{Happy, Sad}, w.Moods())
}

func TestWindow_Resized(t *testing.T) {
	w := WindowOf(5, Happy, Sad, Angry, Neutral)
	small := w.Resized(2)

	require.Equal(t, 2, small.Size())
	assert.Equal(t, []Mood{Angry, Neutral}, small.Moods())
	assert.Equal(t, 4, w.Len())
}

func TestWindow_ZeroValueHoldsNothing(t *testing.T) {
	var w Window
	w.Push(Happy)
	assert.Equal(t, 0, w.Len())
}

func TestWindow_Reset(t *testing.T) {
	w := WindowOf(3, Happy, Sad)
	kept := w
	w.Reset()
	w.Push(Angry)

	assert.Equal(t, []Mood{Angry}, w.Moods())
	assert.Equal(t, []Mood{Happy, Sad}, kept.Moods())
	assert.Equal(t, 3, w.Size())
}

func TestWindow_Smooth(t *testing.T) {
	tests := []struct {
		name      string
		moods     []Mood
		seed      Mood
		want      Mood
		wantCount int
	}{
		{"majority wins", []Mood{Sad, Happy, Sad}, Happy, Sad, 2},
		{"seed wins a tie", []Mood{Sad, Happy}, Happy, Happy, 1},
		{"first seen wins a tie against a later label", []Mood{Angry, Sad, Sad, Angry, Neutral}, Neutral, Angry, 2},
		{"seed holds when no label beats it", []Mood{Sad, Sad, Neutral}, Neutral, Sad, 2},
		{"empty window returns seed", nil, Happy, Happy, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := WindowOf(len(tt.moods), tt.moods...).Smooth(tt.seed)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestSpotSfx(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		words      int
		want       Sfx
	}{
		{"only the last word is inspected", "it's crazy party time", 1, SfxNone},
		{"last word crazy", "this is so crazy", 1, SfxCrazy},
		{"crazy beats party", "crazy party", 2, SfxCrazy},
		{"party beats boom", "boom party", 2, SfxParty},
		{"boom", "and then boom", 1, SfxBoom},
		{"awesome maps to boom", "totally awesome", 1, SfxBoom},
		{"substring match", "partying", 1, SfxParty},
		{"case sensitive", "CRAZY", 1, SfxNone},
		{"trailing whitespace ignored", "so crazy  ", 1, SfxCrazy},
		{"empty transcript", "", 1, SfxNone},
		{"zero words uses default", "wild party", 0, SfxParty},
		{"more words than transcript", "boom", 5, SfxBoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpotSfx(tt.transcript, tt.words))
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("surprised")
	require.NoError(t, err)
	assert.Equal(t, Surprised, m)

	_, err = Parse("bored")
	assert.Error(t, err)

	assert.False(t, None.Valid())
}
