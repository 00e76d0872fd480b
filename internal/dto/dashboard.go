package dto

import "github.com/arsipkita/esurat-api/internal/models"

// DashboardStats aggregates counters shown on the landing page. Which
// fields are populated depends on the actor's role.
type DashboardStats struct {
	IncomingLetters    *int `json:"incoming_letters,omitempty"`
	OutgoingLetters    *int `json:"outgoing_letters,omitempty"`
	PendingApproval    *int `json:"pending_approval,omitempty"`
	SignedLetters      *int `json:"signed_letters,omitempty"`
	PendingMySignature *int `json:"pending_my_signature,omitempty"`
	SignedByMe         *int `json:"signed_by_me,omitempty"`
}

// DashboardResponse bundles stats with recent activity.
type DashboardResponse struct {
	Stats          DashboardStats          `json:"stats"`
	RecentIncoming []models.IncomingLetter `json:"recent_incoming"`
	RecentOutgoing []models.OutgoingLetter `json:"recent_outgoing"`
	UserRole       models.UserRole         `json:"user_role"`
}
