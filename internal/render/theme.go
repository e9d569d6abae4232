package render

// Theme holds colors for diff graph rendering.
type Theme struct {
	Background string
	NodeBorder string
	TextColor  string

	// Node fills by match quality.
	MatchStrong string // similarity >= 0.9
	MatchWeak   string // everything else that matched
	Unmatched   string // insert_a vertices

	EdgeColor string
}

// Plain is the default monochrome-with-accents theme.
var Plain = Theme{
	Background: "#FFFFFF",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	MatchStrong: "#C8E6C9", // green 100
	MatchWeak:   "#FFF9C4", // yellow 100
	Unmatched:   "#FFCDD2", // red 100

	EdgeColor: "#616161",
}
