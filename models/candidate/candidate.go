package candidate

import "time"

type CandidateStage string

const (
	StageApplied   CandidateStage = "applied"
	StageScreening CandidateStage = "screening"
	StageInterview CandidateStage = "interview"
	StageOffer     CandidateStage = "offer"
	StageHired     CandidateStage = "hired"
	StageRejected  CandidateStage = "rejected"
)

// Candidate represents an applicant in the interview pipeline.
type Candidate struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Email       string         `gorm:"type:varchar(255);not null" json:"email"`
	Phone       *string        `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Position    string         `gorm:"type:varchar(255);not null" json:"position"`
	Stage       CandidateStage `gorm:"type:varchar(50);not null;default:'applied'" json:"stage"`
	Source      *string        `gorm:"type:varchar(255)" json:"source,omitempty"`
	Interviewer *string        `gorm:"type:varchar(255)" json:"interviewer,omitempty"`
	Rating      *int           `gorm:"type:int" json:"rating,omitempty"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedBy   string         `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time     `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}

// Helper methods for CandidateStage
func (cs CandidateStage) String() string {
	return string(cs)
}

func (cs CandidateStage) IsValid() bool {
	switch cs {
	case StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected:
		return true
	default:
		return false
	}
}

// IsClosed returns true if the candidate left the active pipeline
func (cs CandidateStage) IsClosed() bool {
	return cs == StageHired || cs == StageRejected
}

// GetAllCandidateStages returns all valid pipeline stages
func GetAllCandidateStages() []CandidateStage {
	return []CandidateStage{
		StageApplied,
		StageScreening,
		StageInterview,
		StageOffer,
		StageHired,
		StageRejected,
	}
}
