package models

const (
	FAMILY_CONTACT = "family"
	FRIEND_CONTACT = "friend"
	WORK_CONTACT   = "work"
	OTHER_CONTACT  = "other"
)

var ContactTypeNameMap = map[string]bool{
	FAMILY_CONTACT: true,
	FRIEND_CONTACT: true,
	WORK_CONTACT:   true,
	OTHER_CONTACT:  true,
}

// Contact belongs to exactly one user & is only ever read or
// mutated through operations scoped to that user's id.
//
// Phone is kept as a string, so numbers with leading zeros or
// formatting characters survive a round trip.
// ProfilePicture holds the storage object name of the contact's
// remote image, when one has been uploaded.
type Contact struct {
	BaseModel
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string   `json:"phone" validate:"required"`
	ContactType    string   `json:"contact_type,omitempty" validate:"omitempty,oneof=family friend work other"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	ProfilePicture string   `json:"profile_picture,omitempty"`
	UserID         uint     `json:"user_id" gorm:"not null"`
}

// ContactFilter holds the fields a contact search can match on.
// Empty fields are ignored; the rest are combined with AND.
type ContactFilter struct {
	Name  string
	Email string
	Phone string
}
