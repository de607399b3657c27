// Package palette assigns each course a stable color pair.
package palette

import (
	"unicode/utf16"

	"github.com/hangyu-feng/myplan-calendar/internal/model"
)

// Colors is the fixed, ordered palette. Every foreground is chosen to stay
// readable on its background.
var Colors = []model.Color{
	{Background: "#39275B", Foreground: "#ffffff"}, // primary purple
	{Background: "#C79900", Foreground: "#000000"}, // secondary gold
	{Background: "#E3BF42", Foreground: "#000000"}, // background gold
	{Background: "#DFDDE8", Foreground: "#000000"}, // light purple
	{Background: "#5B8F22", Foreground: "#ffffff"}, // bright green
	{Background: "#0046AD", Foreground: "#ffffff"}, // bright blue
	{Background: "#C75B12", Foreground: "#ffffff"}, // bright orange
	{Background: "#165788", Foreground: "#ffffff"}, // muted dark blue
	{Background: "#BD4F19", Foreground: "#ffffff"}, // burnt orange
	{Background: "#4b2e83", Foreground: "#ffffff"}, // spirit purple
	{Background: "#898F4B", Foreground: "#000000"}, // muted olive
	{Background: "#93B1CC", Foreground: "#000000"}, // muted blue
}

// Assign returns the palette entry for title. It is a pure function of the
// string, so the same course gets the same color in every day column.
func Assign(title string) model.Color {
	return Colors[Index(title)]
}

// Index computes hash = c + (hash<<5) - hash over the UTF-16 code units of
// title. The shift operates on the 32-bit truncation of the running value
// while the subtraction does not, matching how plan pages have always
// colored their courses.
func Index(title string) int {
	var hash int64
	for _, c := range utf16.Encode([]rune(title)) {
		shifted := int64(int32(uint32(hash) << 5))
		hash = int64(c) + shifted - hash
	}
	if hash < 0 {
		hash = -hash
	}
	return int(hash % int64(len(Colors)))
}
