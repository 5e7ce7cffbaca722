package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"شرح كتاب الأربعين النووية", "حديث"},
		{"دروس الفقه الشافعي", "فقه"},
		{"تفسير سورة البقرة", "تفسير"},
		{"مجالس الذكر والحضرة", "تصوف"},
		{"العقيدة الطحاوية", "عقيدة"},
		{"السيرة النبوية", "سيرة"},
		{"خطبة الجمعة", "خطب"},
		{"لقاء مفتوح", CategoryDefault},
		{"", CategoryDefault},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.title), "title %q", tt.title)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Title matches both فقه and حديث keywords; the earlier table
	// entry decides.
	assert.Equal(t, "فقه", Classify("فقه حديث"))
}

func TestClassify_DefaultNeverMatchesBySubstring(t *testing.T) {
	// A title containing the default category's own name still goes
	// through keyword matching and falls back.
	assert.Equal(t, CategoryDefault, Classify("متنوع"))
}

func TestCategoriesOf(t *testing.T) {
	playlists := []Playlist{
		{ID: "a", Category: "حديث"},
		{ID: "b", Category: "فقه"},
		{ID: "c", Category: "حديث"},
		{ID: "d", Category: CategoryDefault},
	}

	got := CategoriesOf(playlists)
	assert.Equal(t, []string{"حديث", "فقه", CategoryDefault}, got)
}
