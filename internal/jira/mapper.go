package jira

// mapUsers converts user DTOs into domain users, skipping app accounts
// (bots, plugin users) that never hold real work.
func mapUsers(dtos []UserDTO) []User {
	users := make([]User, 0, len(dtos))
	for _, dto := range dtos {
		if dto.AccountType == "app" {
			continue
		}
		users = append(users, User{
			AccountID:   dto.AccountID,
			DisplayName: dto.DisplayName,
			Email:       dto.Email,
			Active:      dto.Active,
		})
	}
	return users
}

func mapBoards(dtos []BoardDTO) []Board {
	boards := make([]Board, 0, len(dtos))
	for _, dto := range dtos {
		boards = append(boards, Board{
			ID:         dto.ID,
			Name:       dto.Name,
			Type:       dto.Type,
			ProjectKey: dto.Location.ProjectKey,
		})
	}
	return boards
}

func mapFields(dtos []FieldDTO) []Field {
	fields := make([]Field, 0, len(dtos))
	for _, dto := range dtos {
		fields = append(fields, Field{
			ID:     dto.ID,
			Name:   dto.Name,
			Type:   dto.Schema.Type,
			Custom: dto.Custom,
		})
	}
	return fields
}

func mapIssues(dtos []IssueDTO) []Issue {
	issues := make([]Issue, 0, len(dtos))
	for _, dto := range dtos {
		issues = append(issues, Issue{
			Key:       dto.Key,
			Summary:   dto.Fields.Summary,
			IssueType: dto.Fields.IssueType.Name,
			Status:    dto.Fields.Status.Name,
		})
	}
	return issues
}
