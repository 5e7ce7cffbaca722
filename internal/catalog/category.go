package catalog

import "strings"

// CategoryDefault is the residual category for playlists whose name
// matches no keyword.
const CategoryDefault = "متنوع"

// categoryKeywords maps each category to the substrings that select it.
// Checked in order; first match wins. The default category carries no
// keywords and is only ever reached as the fallback.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"تصوف", []string{"تصوف", "صوفي", "الحضرة", "الأوراد", "ذكر", "مجلس"}},
	{"فقه", []string{"فقه", "الفقه", "شافعي", "حنفي", "مالكي", "حنبلي", "أحكام"}},
	{"تفسير", []string{"تفسير", "القرآن", "سورة", "آية"}},
	{"حديث", []string{"حديث", "البخاري", "مسلم", "الأربعين", "النووي"}},
	{"عقيدة", []string{"عقيدة", "توحيد", "إيمان", "أشعري"}},
	{"سيرة", []string{"سيرة", "النبي", "الرسول", "محمد"}},
	{"ردود", []string{"رد", "ردود", "شبه", "دفاع"}},
	{"صلوات", []string{"صلوات", "صلاة", "صلى"}},
	{"خطب", []string{"خطبة", "خطب", "جمعة"}},
	{CategoryDefault, nil},
}

// Classify maps a playlist title to its category by case-insensitive
// substring match against the keyword table.
func Classify(title string) string {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return entry.name
			}
		}
	}
	return CategoryDefault
}

// CategoriesOf returns the distinct categories of the given playlists
// in first-seen order.
func CategoriesOf(playlists []Playlist) []string {
	seen := make(map[string]bool, len(playlists))
	var categories []string
	for _, p := range playlists {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}
