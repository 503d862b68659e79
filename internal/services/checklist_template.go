package services

import (
	"fmt"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
)

// standardChecklist is the default turn template applied when a create
// request carries no checklist of its own.
var standardChecklist = []dtos.TaskInput{
	{TaskName: "Initial Walkthrough", Category: "Inspection", Required: true},
	{TaskName: "Deep Clean Kitchen", Category: "Cleaning", Required: true},
	{TaskName: "Deep Clean Bathroom", Category: "Cleaning", Required: true},
	{TaskName: "Deep Clean Bedrooms", Category: "Cleaning", Required: true},
	{TaskName: "Paint Touch-up", Category: "Maintenance", Required: false},
	{TaskName: "Carpet Cleaning", Category: "Cleaning", Required: true},
	{TaskName: "HVAC Filter Replace", Category: "Maintenance", Required: true},
	{TaskName: "Smoke Detector Test", Category: "Safety", Required: true},
	{TaskName: "Appliance Check", Category: "Maintenance", Required: true},
	{TaskName: "Keys & Access", Category: "Admin", Required: true},
	{TaskName: "Final Walkthrough", Category: "Inspection", Required: true},
	{TaskName: "Photos & Documentation", Category: "Admin", Required: true},
}

// buildChecklist turns template inputs into fresh, uncompleted tasks
// with stable ids and ordering.
func buildChecklist(inputs []dtos.TaskInput) []models.Task {
	if len(inputs) == 0 {
		inputs = standardChecklist
	}
	tasks := make([]models.Task, 0, len(inputs))
	for i, in := range inputs {
		tasks = append(tasks, models.Task{
			TaskID:   fmt.Sprintf("task-%d", i+1),
			TaskName: in.TaskName,
			Category: in.Category,
			Required: in.Required,
			Order:    i + 1,
			Notes:    in.Notes,
		})
	}
	return tasks
}
