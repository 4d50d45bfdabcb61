package recommendations

import (
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/processing"
)

var (
	guidanceHappiness = models.StaticGuidance{
		ID:      "rec-1",
		Title:   "Responding to Happiness",
		Content: "When the individual shows happiness, this is an opportunity for positive reinforcement. Acknowledge their joy verbally and consider using this moment to build social connections. For example, you might say: \"I see you're happy! That's wonderful. What are you enjoying right now?\"",
	}
	guidanceConfusion = models.StaticGuidance{
		ID:      "rec-2",
		Title:   "Handling Confusion",
		Content: "When signs of confusion appear, simplify your communication. Use clear, direct language without idioms or figures of speech. Consider visual supports to complement verbal information. Allow extra processing time and check for understanding by asking simple yes/no questions.",
	}
	guidanceAnxiety = models.StaticGuidance{
		ID:      "rec-3",
		Title:   "Managing Anxiety",
		Content: "When anxiety is detected, first ensure the environment is not overstimulating (reduce noise, bright lights, etc). Offer a quiet space if needed. Use calming, predictable language and consider introducing a familiar comfort item or activity. Deep breathing exercises may help in some cases.",
	}
	guidanceTransitions = models.StaticGuidance{
		ID:      "rec-4",
		Title:   "Supporting Transitions",
		Content: "Transitions between activities can be challenging. Use visual schedules to show what's happening now and what's coming next. Give advance notice before transitions, using timers if helpful. Maintain consistent routines when possible, and acknowledge the difficulty when routines must change.",
	}
)

var categoryGuidance = map[string]models.StaticGuidance{
	processing.CategoryPositive:   guidanceHappiness,
	processing.CategoryUncertain:  guidanceConfusion,
	processing.CategoryDistressed: guidanceAnxiety,
}

// StaticGuidanceFor returns canned tips for an emotion: the tip for its category followed
// by transition support. Labels without a dedicated tip get the full set.
func StaticGuidanceFor(label string) []models.StaticGuidance {
	if g, ok := categoryGuidance[processing.CategoryFor(label).Name]; ok {
		return []models.StaticGuidance{g, guidanceTransitions}
	}
	return []models.StaticGuidance{
		guidanceHappiness,
		guidanceConfusion,
		guidanceAnxiety,
		guidanceTransitions,
	}
}
