package mcp

import "github.com/warpdl/reminder/common"

// Tools is the catalogue returned by tools/list.
var Tools = []Tool{
	{
		Name: common.ToolCreateReminder,
		Description: "Create a new reminder or calendar event with system notification. " +
			`Supports absolute times (ISO format) or relative delays (e.g., "in 5 minutes", "in 2 hours"). ` +
			"The notification will appear as a system-level alert even when using fullscreen applications.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"title": {
					Type:        "string",
					Description: "Title of the reminder",
				},
				"message": {
					Type:        "string",
					Description: "Detailed message for the reminder",
				},
				"time": {
					Type: "string",
					Description: `When to trigger the reminder. Can be ISO datetime string (e.g., "2025-10-29T15:30:00") ` +
						`or relative time (e.g., "in 30 minutes", "in 2 hours", "in 1 day")`,
				},
			},
			Required: []string{"title", "message", "time"},
		},
	},
	{
		Name:        common.ToolListReminders,
		Description: "List all active reminders",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
		},
	},
	{
		Name:        common.ToolCancelReminder,
		Description: "Cancel a specific reminder by ID",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"id": {
					Type:        "string",
					Description: "ID of the reminder to cancel",
				},
			},
			Required: []string{"id"},
		},
	},
}
