package models

import (
	"fmt"

	"github.com/Daskott/rolodex/server/auth"
)

var (
	allFieldsExceptPassword = []string{"id",
		"name",
		"email",
		"created_at",
		"updated_at",
	}

	updatableUserFields = []string{"name",
		"email",
		"password",
	}
)

type User struct {
	BaseModel
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password string    `json:"password,omitempty" validate:"required,min=8,password" gorm:"not null"`
	Contacts []Contact `json:"contacts,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Update applies the given fields to the user record,
// re-hashing the password whenever a new one is provided.
func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(fmt.Sprintf("%v", data["password"]))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableUserFields).Updates(data).Error
}

// AddContact persists a new contact owned by the user
func (user *User) AddContact(contact *Contact) error {
	contact.UserID = user.ID
	return db.Create(contact).Error
}

// LoadContacts fills user.Contacts with all of the user's
// contacts, ordered by name ascending.
func (user *User) LoadContacts() error {
	return db.Order("name asc").Find(&user.Contacts, "user_id = ?", user.ID).Error
}

// FindContact returns the user's contact with the given id.
// A contact owned by another user is never returned.
func (user *User) FindContact(contactID interface{}) (*Contact, error) {
	contact := Contact{}

	err := db.First(&contact, "id = ? AND user_id = ?", contactID, user.ID).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// SearchContact returns the first of the user's contacts matching
// ALL the provided(i.e. non-empty) filter fields.
func (user *User) SearchContact(filter ContactFilter) (*Contact, error) {
	query := db.Where("user_id = ?", user.ID)

	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}

	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	if filter.Phone != "" {
		query = query.Where("phone = ?", filter.Phone)
	}

	contact := Contact{}
	if err := query.First(&contact).Error; err != nil {
		return nil, err
	}

	return &contact, nil
}

func (user *User) UpdateContact(contactID interface{}, data map[string]interface{}) error {
	return db.Table("contacts").Where("id = ? AND user_id = ?", contactID, user.ID).Updates(data).Error
}

func (user *User) DeleteContact(contactID interface{}) error {
	return db.Where("user_id = ?", user.ID).Delete(&Contact{}, contactID).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindAllUsers() ([]User, error) {
	users := []User{}
	err := db.Select(allFieldsExceptPassword).Order("name asc").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error

	if err != nil {
		return "", err
	}
	return user.Password, nil
}

func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	return db.Create(user).Error
}
