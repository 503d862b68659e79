package dtos

// ActivityStatistics is the rollup served to the dashboard.
type ActivityStatistics struct {
	TotalActivities int            `json:"total_activities"`
	ByActionType    map[string]int `json:"by_action_type"`
	ByEntityType    map[string]int `json:"by_entity_type"`
	ByUser          map[string]int `json:"by_user"`
	TopUsers        []UserCount    `json:"top_users"`
}

// UserCount pairs a user's display name with their activity count.
type UserCount struct {
	UserName string `json:"user_name"`
	Count    int    `json:"count"`
}
