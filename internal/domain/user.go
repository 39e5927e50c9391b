package domain

// User Model
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`                       // Primary key
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"` // Unique, normalized email
	PasswordHash string `gorm:"not null" json:"-"`                          // Bcrypt hash, never serialized
}

// TableName pins the table to "user"
func (User) TableName() string {
	return "user"
}
