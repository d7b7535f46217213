package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

type Job struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Title       string
	Status      valueobject.JobStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type JobApplication struct {
	ID           uuid.UUID
	JobID        uuid.UUID
	FreelancerID uuid.UUID
	Status       valueobject.ApplicationStatus
	CreatedAt    time.Time
}

func (j *Job) IsOwnedBy(userID uuid.UUID) bool {
	return j.ClientID == userID
}

func (j *Job) AcceptsApplications() bool {
	return j.Status == valueobject.JobStatusOpen
}
