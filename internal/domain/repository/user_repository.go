package repository

import "cryptofolio/internal/domain/entity"

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// GetByResetTokenHash looks up the user holding the given one-way
	// reset-token hash. Expiry is checked by the caller.
	GetByResetTokenHash(hash string) (*entity.User, error)
	Update(u *entity.User) error
}
