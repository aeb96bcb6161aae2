package models

// Role is the access role of a user account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleParent:
		return true
	}
	return false
}

// ExamType identifies the state exam a result belongs to.
type ExamType string

const (
	ExamTypeEGE ExamType = "EGE"
	ExamTypeOGE ExamType = "OGE"
)

// AchievementType classifies a student achievement.
type AchievementType string

const (
	AchievementOlympiad    AchievementType = "OLYMPIAD"
	AchievementCertificate AchievementType = "CERTIFICATE"
	AchievementCompetition AchievementType = "COMPETITION"
)
