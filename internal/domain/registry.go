package domain

import "time"

// User system user referenced by work orders (inspector, responsible or transfer person)
type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;size:150;uniqueIndex" json:"username"`
	Name      string    `gorm:"column:name;size:40" json:"name"`
	Mobile    string    `gorm:"column:mobile;size:20;index" json:"mobile"`
	Email     string    `gorm:"column:email;size:255" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}

// DisplayName prefers the real name over the login name
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Merchant inspected business
type Merchant struct {
	ID                  uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                string    `gorm:"column:name;size:255;not null" json:"name"`
	Manager             string    `gorm:"column:manager;size:100" json:"manager"`
	Phone               string    `gorm:"column:phone;size:20" json:"phone"`
	Address             string    `gorm:"column:address;type:text" json:"address"`
	ResponsiblePersonID *uint64   `gorm:"column:responsible_person_id" json:"responsible_person_id"`
	ResponsiblePerson   *User     `gorm:"foreignKey:ResponsiblePersonID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (Merchant) TableName() string {
	return "merchants"
}
