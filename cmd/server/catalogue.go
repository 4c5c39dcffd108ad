package main

import (
	"github.com/samber/lo"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

type catalogueEntry struct {
	name, bodyPart, difficulty, description string
	sets                                    int
	reps, seconds                           int // one of the two is set
}

var catalogue = []catalogueEntry{
	{"Push-ups", "Chest", "Intermediate", "Standard push-ups, hands shoulder-width apart.", 3, 10, 0},
	{"Wall Push-ups", "Chest", "Easy", "Push-ups against a wall for early shoulder rehab.", 3, 12, 0},
	{"Squats", "Legs", "Intermediate", "Bodyweight squats to a comfortable depth.", 3, 12, 0},
	{"Chair Squats", "Legs", "Easy", "Sit-to-stand from a chair without using the hands.", 3, 10, 0},
	{"Plank", "Core", "Intermediate", "Forearm plank with a neutral spine.", 3, 0, 30},
	{"Side Plank", "Core", "Hard", "Side plank on the forearm, hips lifted.", 2, 0, 20},
	{"Hamstring Stretch", "Legs", "Easy", "Seated hamstring stretch, hold without bouncing.", 2, 0, 30},
	{"Shoulder Stretch", "Shoulders", "Easy", "Cross-body shoulder stretch.", 2, 0, 30},
	{"Knee Extensions", "Knee", "Easy", "Seated knee extensions for quadriceps strength.", 3, 15, 0},
	{"Step-ups", "Legs", "Intermediate", "Step onto a low platform, alternating legs.", 3, 10, 0},
	{"Running in Place", "Full Body", "Easy", "Low-impact cardio, lift knees to hip height.", 1, 0, 120},
}

// exerciseCatalogue returns the exercises loaded by the seed command.
func exerciseCatalogue() []domain.Exercise {
	return lo.Map(catalogue, func(e catalogueEntry, _ int) domain.Exercise {
		ex := domain.Exercise{
			Name:        e.name,
			Category:    services.CategoryFromBodyPart(e.bodyPart),
			Difficulty:  services.DifficultyLevel(e.difficulty),
			Description: e.description,
			DefaultSets: e.sets,
		}
		if e.reps > 0 {
			ex.DefaultReps = lo.ToPtr(e.reps)
		}
		if e.seconds > 0 {
			ex.DefaultDurationSeconds = lo.ToPtr(e.seconds)
		}
		return ex
	})
}
