package entity

type Note struct {
	ID        int64  `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	OwnerID   int64  `gorm:"not null;index"` // References: user(id)
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}

func (Note) TableName() string {
	return "notes"
}

// OwnedBy reports whether the note belongs to the given user.
func (n *Note) OwnedBy(user *User) bool {
	return user != nil && n.OwnerID == user.ID
}
