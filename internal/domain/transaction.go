package domain

// Transaction Model
type Transaction struct {
	ID          uint    `gorm:"primaryKey" json:"id"`                                   // Primary key
	Description string  `gorm:"not null" json:"description"`                            // Free-form description
	Amount      float64 `gorm:"not null" json:"amount"`                                 // Signed amount, negative for spending
	Category    string  `gorm:"not null" json:"category"`                               // Free-form category label
	UserID      uint    `gorm:"index;not null" json:"user_id"`                          // Owner, immutable after creation
	User        *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owning user, cascade on delete
}

// TableName pins the table to "transaction"
func (Transaction) TableName() string {
	return "transaction"
}
