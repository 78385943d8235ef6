package invites

// InviteUserRequest names the user the host is inviting.
type InviteUserRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
