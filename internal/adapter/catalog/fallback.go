package catalog

import (
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
)

// Fallback is served whenever the reference workbook cannot be read.
// Rates are kcal per hour for a 57 kg and an 80 kg person.
func Fallback() []exercise.Reference {
	return []exercise.Reference{
		{Name: "Aeróbic", CaloriesPerHour57kg: 283, CaloriesPerHour80kg: 396, Category: exercise.Cardio, DefaultDurationMinutes: 45},
		{Name: "Ciclismo", CaloriesPerHour57kg: 453, CaloriesPerHour80kg: 635, Category: exercise.Cardio, DefaultDurationMinutes: 60},
		{Name: "Esquí de fondo", CaloriesPerHour57kg: 453, CaloriesPerHour80kg: 635, Category: exercise.Sport, DefaultDurationMinutes: 60},
		{Name: "Correr", CaloriesPerHour57kg: 566, CaloriesPerHour80kg: 794, Category: exercise.Cardio, DefaultDurationMinutes: 30},
		{Name: "Natación", CaloriesPerHour57kg: 396, CaloriesPerHour80kg: 556, Category: exercise.Sport, DefaultDurationMinutes: 45},
	}
}
