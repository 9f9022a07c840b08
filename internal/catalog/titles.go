package catalog

import "github.com/hwangseoul-netizen/tention-mini/internal/domain"

// SlotsPerCategory is the number of core slots generated for each category
const SlotsPerCategory = 20

var titles = map[domain.Category][SlotsPerCategory]string{
	domain.Vibes: {
		"Sunrise Coffee Walk", "Silent First Look", "Bookstore First Page", "Street Art Stroll",
		"Farmer’s Market Loop", "Pier Sunset", "Two-Song Share", "Viewpoint Chill",
		"Dog-Walk Meet", "Gallery Micro Tour", "City Steps Pulse", "Park Bench Hello",
		"Morning Matcha", "Rooftop Quick Chat", "Riverfront Mini Stroll", "Museum One-Piece",
		"Beach Breeze Talk", "Fountain Meet", "Skyline Snapshot", "Garden Micro Walk",
	},
	domain.Friends: {
		"Co-founder Spark", "Language Swap Mini", "New in Town Loop", "Photo Crit Mini",
		"Mentor Ping", "No-Phone Bench Talk", "Side-Project Show", "Parent Reset",
		"Vision Board in 10", "Career Fork", "Gratitude Walk", "Two-Prompt Journal",
		"City Secrets Swap", "Hobby Trade", "Podcast Rec Swap", "Board Games Hello",
		"Sketch & Share", "Film Buff Mini", "Foodies First Bite", "Coffee Recipe Swap",
	},
	domain.Workout: {
		"Jog & Talk", "Park Stretch", "Mobility Reset", "Stairs Sprint",
		"Pickleball Rally", "Mini Tennis", "Bike Loop", "Court Walk",
		"Breath Reset", "Stability Flow", "Lake Path Walk", "Hill Repeats Light",
		"Track Laps Easy", "Beach Planks", "Core & Posture", "Yoga Sun Salute",
		"Balance & Hips", "Resistance Band Mini", "Walk & Decompress", "Tempo Stroll",
	},
	domain.Try: {
		"Listen Only", "Hard Things", "Anxiety Walk", "Burnout SOS",
		"Founder Therapy", "Immigrant Stories", "Stoic Reset", "Career Pivot",
		"Study Buddy", "No Pitch Hour", "Compliment Swap", "Grief Minute",
		"Big Decision Draft", "Habit Engineering", "Deep Work Setup", "MBA? PhD?",
		"Job Search Sprint", "Boundaries IRL", "Minimalism IRL", "Morning Refocus",
	},
}
