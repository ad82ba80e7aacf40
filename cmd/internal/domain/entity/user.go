package entity

// User is the identity record behind every bearer token.
//
// Password always holds a bcrypt hash once the row is stored.
type User struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"not null;uniqueIndex"`
	Age         int        `gorm:"not null"`
	Password    string     `gorm:"not null"`
	Permissions Permission `gorm:"not null;type:bigint;default:0"`
	CreatedAt   int64      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   int64      `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Notes []Note `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) IsAdmin() bool {
	return u.Permissions.Has(PermissionAdministrator)
}
