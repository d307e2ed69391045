package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	Commitments  *CommitmentRepository
	Completions  *CompletionRepository
	Participants *ParticipantRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Commitments:  NewCommitmentRepository(database),
		Completions:  NewCompletionRepository(database),
		Participants: NewParticipantRepository(database),
	}
}
