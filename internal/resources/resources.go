// Package resources holds the static content the companion offers:
// coping strategies, crisis lines, greetings and the daily check-in
// schedule.
package resources

import "strings"

type CopingStrategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

type CrisisResource struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
}

// ScheduledNotification is an entry of the static daily timeline.
type ScheduledNotification struct {
	Time    string `json:"time"` // "HH:MM"
	Message string `json:"message"`
	Type    string `json:"type"`
}

var CopingStrategies = []CopingStrategy{
	{Name: "Deep Breathing", Description: "4-7-8 breathing technique for immediate anxiety relief", Duration: "5 minutes"},
	{Name: "Grounding Exercise", Description: "5-4-3-2-1 technique to reconnect with the present moment", Duration: "3 minutes"},
	{Name: "Progressive Muscle Relaxation", Description: "Systematically tense and relax muscle groups", Duration: "10 minutes"},
	{Name: "Mindful Walking", Description: "Gentle movement with awareness", Duration: "15 minutes"},
	{Name: "Journaling", Description: "Express thoughts and feelings through writing", Duration: "10 minutes"},
}

var CrisisResources = []CrisisResource{
	{Name: "Crisis Text Line", Contact: "Text HOME to 741741", Description: "24/7 crisis support via text"},
	{Name: "National Suicide Prevention Lifeline", Contact: "988", Description: "24/7 phone support"},
	{Name: "Trevor Project", Contact: "1-866-488-7386", Description: "LGBTQ youth crisis support"},
	{Name: "Teen Helpline", Contact: "1-800-852-8336", Description: "Support specifically for teens"},
}

var ConversationStarters = []string{
	"Hi there! I'm here to listen and support you. How are you feeling right now?",
	"I'm glad you're here. What's on your mind today?",
	"Welcome back! I'm here whenever you need to talk.",
	"Hello! I'm your wellness companion. What would you like to chat about?",
}

var DailySchedule = []ScheduledNotification{
	{Time: "09:00", Message: "Good morning! How are you feeling today? 🌅", Type: "check-in"},
	{Time: "12:00", Message: "Midday check-in: Take a moment to breathe and notice how you're doing 💙", Type: "check-in"},
	{Time: "15:00", Message: "Afternoon reminder: Remember to be kind to yourself today ✨", Type: "motivation"},
	{Time: "18:00", Message: "Evening reflection: What's one thing that went well today? 🌟", Type: "reflection"},
	{Time: "21:00", Message: "Winding down: Consider trying a brief relaxation exercise 🌙", Type: "coping"},
}

// FindCopingStrategy looks a strategy up by name, case-insensitively.
func FindCopingStrategy(name string) (CopingStrategy, bool) {
	name = strings.TrimSpace(name)
	for _, s := range CopingStrategies {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return CopingStrategy{}, false
}
