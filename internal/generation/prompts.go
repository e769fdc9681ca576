package generation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
)

// ImagePrompts returns three prompts for the same event: the overall
// setup, decoration details, and highlights.
func ImagePrompts(ec EventContext) []string {
	style := domain.Coalesce(ec.Style, "celebration")
	var guests, place string
	if ec.GuestCount > 0 {
		guests = fmt.Sprintf(" for %d guests", ec.GuestCount)
	}
	if ec.Location != "" {
		place = " in " + ec.Location
	}
	title := titleCase(ec.EventType)

	return []string{
		fmt.Sprintf("Beautiful %s venue setup%s%s, %s style, elegant decorations, party atmosphere, wide venue shot, professional event photography", ec.EventType, guests, place, style),
		fmt.Sprintf("%s decorations and details, %s theme, centerpieces, table settings, floral arrangements, close-up detail shots", title, style),
		fmt.Sprintf("%s highlights and activities%s, celebration cake, food presentation, joyful atmosphere, festive moments", title, guests),
	}
}

// MusicQueries returns up to three playlist search queries.
func MusicQueries(ec EventContext) []string {
	queries := []string{ec.EventType + " celebration music"}
	if ec.Style != "" {
		queries = append(queries, ec.Style+" party music")
	}
	switch {
	case ec.GuestCount > 15:
		queries = append(queries, "upbeat party dance music")
	case ec.GuestCount > 0 && ec.GuestCount < 8:
		queries = append(queries, "intimate celebration music")
	}
	queries = append(queries, "popular "+ec.EventType+" playlist", "celebration party songs")
	return firstUnique(queries, 3)
}

// VenueQueries returns up to three venue searches, location first.
func VenueQueries(ec EventContext) []string {
	isWedding := strings.Contains(strings.ToLower(ec.EventType), "wedding")
	var queries []string

	if loc := enhanceLocation(ec.Location); loc != "" {
		if isWedding {
			queries = append(queries, "wedding venues "+loc, "wedding reception halls "+loc)
		} else {
			queries = append(queries, ec.EventType+" venues "+loc, "event venues "+loc)
		}
		switch {
		case ec.GuestCount > 50:
			queries = append(queries, "large event venues "+loc)
		case ec.GuestCount > 20:
			queries = append(queries, "medium event spaces "+loc)
		case ec.GuestCount > 0:
			queries = append(queries, "small private venues "+loc)
		}
	} else if isWedding {
		queries = append(queries, "wedding venues", "wedding reception halls", "bridal venues")
	} else {
		queries = append(queries, ec.EventType+" venues", "event spaces", "party venues")
	}
	return firstUnique(queries, 3)
}

// FoodQueries returns up to three catering and restaurant searches.
func FoodQueries(ec EventContext) []string {
	kind := strings.ToLower(ec.EventType)
	var queries []string
	switch {
	case strings.Contains(kind, "wedding"):
		queries = append(queries, "wedding catering", "elegant restaurant")
	case strings.Contains(kind, "birthday"):
		queries = append(queries, "party catering", "birthday restaurant")
	case strings.Contains(kind, "corporate"):
		queries = append(queries, "corporate catering", "business restaurant")
	default:
		queries = append(queries, "celebration restaurant", "party catering")
	}
	if ec.MealType != "" {
		queries = slices.Insert(queries, 0, ec.MealType+" catering")
	}
	if loc := enhanceLocation(ec.Location); loc != "" {
		queries = slices.Insert(queries, 0, "restaurants "+loc)
	}
	return firstUnique(queries, 3)
}

var styleQueries = map[string]string{
	"minimalist":     "minimalist modern clean simple aesthetic",
	"wedding":        "wedding bridal elegant romantic ceremony",
	"birthday party": "birthday celebration cake party colorful",
	"graduation":     "graduation ceremony achievement academic success",
	"holiday party":  "holiday celebration festive christmas winter",
	"summer vibes":   "summer beach tropical vacation sunset",
	"music festival": "music festival concert stage lights crowd",
	"wine tasting":   "wine tasting vineyard elegant sophisticated",
	"date night":     "romantic dinner candles intimate evening",
	"vibrant":        "colorful vibrant bright energetic dynamic",
	"bohemian":       "bohemian boho rustic natural earthy",
	"luxury":         "luxury elegant gold sophisticated premium",
	"romantic":       "romantic soft pink flowers intimate",
	"energetic":      "energetic dynamic action bright colorful",
}

// StyleQuery maps a gallery style name to a photo search query.
func StyleQuery(style string) string {
	if q, ok := styleQueries[strings.ToLower(strings.TrimSpace(style))]; ok {
		return q
	}
	return strings.TrimSpace(style) + " aesthetic beautiful"
}

// Short place names searched with their country, checked in order.
var locationHints = [][2]string{
	{"diani", "Diani Beach Kenya"},
	{"mombasa", "Mombasa Kenya"},
	{"nairobi", "Nairobi Kenya"},
}

func enhanceLocation(loc string) string {
	lower := strings.ToLower(loc)
	if strings.Contains(lower, "kenya") {
		return loc
	}
	for _, hint := range locationHints {
		if strings.Contains(lower, hint[0]) {
			return hint[1]
		}
	}
	return loc
}

func firstUnique(in []string, n int) []string {
	out := make([]string, 0, n)
	for _, q := range in {
		if len(out) == n {
			break
		}
		if !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
