package generation

import (
	"testing"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewEventContext(t *testing.T) {
	ec := NewEventContext(domain.Fields{
		"event_type":  "birthday party",
		"location":    "Mombasa",
		"guest_count": "around 30",
		"budget":      "$2000",
	})
	assert.Equal(t, "birthday party", ec.EventType)
	assert.Equal(t, "Mombasa", ec.Location)
	assert.Equal(t, 30, ec.GuestCount)
	assert.Equal(t, "$2000", ec.Budget)

	assert.Equal(t, "party", NewEventContext(domain.Fields{}).EventType)
	assert.Equal(t, 40, NewEventContext(domain.Fields{"guest_count": float64(40)}).GuestCount)
	assert.Equal(t, 10, NewEventContext(domain.Fields{"guest_count": "10-15"}).GuestCount)
}

func TestImagePrompts(t *testing.T) {
	prompts := ImagePrompts(weddingContext())
	assert.Len(t, prompts, 3)
	assert.Contains(t, prompts[0], "wedding venue setup for 80 guests in Nairobi")
	assert.Contains(t, prompts[0], "celebration style")
	assert.Contains(t, prompts[1], "Wedding decorations")
	assert.Contains(t, prompts[2], "Wedding highlights and activities for 80 guests")
}

func TestMusicQueries(t *testing.T) {
	assert.Equal(t, []string{
		"wedding celebration music",
		"upbeat party dance music",
		"popular wedding playlist",
	}, MusicQueries(weddingContext()))

	small := MusicQueries(EventContext{EventType: "dinner", GuestCount: 4, Style: "jazz"})
	assert.Equal(t, []string{"dinner celebration music", "jazz party music", "intimate celebration music"}, small)
}

func TestVenueQueries(t *testing.T) {
	assert.Equal(t, []string{
		"wedding venues Nairobi Kenya",
		"wedding reception halls Nairobi Kenya",
		"large event venues Nairobi Kenya",
	}, VenueQueries(weddingContext()))

	assert.Equal(t, []string{"birthday venues", "event spaces", "party venues"},
		VenueQueries(EventContext{EventType: "birthday"}))
}

func TestFoodQueries(t *testing.T) {
	q := FoodQueries(EventContext{EventType: "wedding", Location: "Diani", MealType: "dinner"})
	assert.Equal(t, []string{"restaurants Diani Beach Kenya", "dinner catering", "wedding catering"}, q)
}

func TestStyleQuery(t *testing.T) {
	assert.Equal(t, "bohemian boho rustic natural earthy", StyleQuery("Bohemian"))
	assert.Equal(t, "cyberpunk aesthetic beautiful", StyleQuery("cyberpunk"))
}
