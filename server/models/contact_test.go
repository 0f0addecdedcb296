package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, name, email string) *User {
	user := &User{Name: name, Email: email, Password: "very-secure"}
	assert.Nil(t, CreateUser(user), "Should create user record")
	return user
}

func TestAddAndFindContact(t *testing.T) {
	InitializeTestDb()
	testUser := createTestUser(t, "tony stark", "stark@avengers.com")

	contact := &Contact{Name: "Ada", Phone: "5551234"}
	assert.Nil(t, testUser.AddContact(contact))
	assert.NotZero(t, contact.ID, "Expected contact to get a generated id")

	found, err := testUser.FindContact(contact.ID)
	assert.Nil(t, err)
	assert.Equal(t, "Ada", found.Name)
	assert.Equal(t, "5551234", found.Phone, "Expected phone to survive as a string")
	assert.Equal(t, testUser.ID, found.UserID)
}

func TestLoadContactsOrdersByName(t *testing.T) {
	InitializeTestDb()
	testUser := createTestUser(t, "tony stark", "stark@avengers.com")

	for _, name := range []string{"Charlie", "Ada", "Bob"} {
		assert.Nil(t, testUser.AddContact(&Contact{Name: name, Phone: "5551234"}))
	}

	assert.Nil(t, testUser.LoadContacts())
	assert.Len(t, testUser.Contacts, 3)
	assert.Equal(t, "Ada", testUser.Contacts[0].Name)
	assert.Equal(t, "Bob", testUser.Contacts[1].Name)
	assert.Equal(t, "Charlie", testUser.Contacts[2].Name)
}

func TestSearchContact(t *testing.T) {
	InitializeTestDb()
	testUser := createTestUser(t, "tony stark", "stark@avengers.com")

	assert.Nil(t, testUser.AddContact(&Contact{Name: "Ada", Phone: "5551234", Email: "ada@example.com"}))
	assert.Nil(t, testUser.AddContact(&Contact{Name: "Ada", Phone: "5559999"}))

	// all provided filters must match(AND), not just any of them
	contact, err := testUser.SearchContact(ContactFilter{Name: "Ada", Phone: "5559999"})
	assert.Nil(t, err)
	assert.Equal(t, "5559999", contact.Phone)

	_, err = testUser.SearchContact(ContactFilter{Name: "Ada", Phone: "5550000"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "Expected no contact when one filter doesn't match")

	contact, err = testUser.SearchContact(ContactFilter{Email: "ada@example.com"})
	assert.Nil(t, err)
	assert.Equal(t, "5551234", contact.Phone)
}

func TestContactOwnerScoping(t *testing.T) {
	InitializeTestDb()
	userA := createTestUser(t, "tony stark", "stark@avengers.com")
	userB := createTestUser(t, "spider man", "web@avengers.com")

	contact := &Contact{Name: "Ada", Phone: "5551234"}
	assert.Nil(t, userA.AddContact(contact))

	_, err := userB.FindContact(contact.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "Expected another user's contact to be invisible")

	_, err = userB.SearchContact(ContactFilter{Name: "Ada"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	assert.Nil(t, userB.LoadContacts())
	assert.Empty(t, userB.Contacts)

	// deletes & updates scoped to another owner are no-ops
	assert.Nil(t, userB.DeleteContact(contact.ID))
	assert.Nil(t, userB.UpdateContact(contact.ID, map[string]interface{}{"name": "Hacked"}))

	found, err := userA.FindContact(contact.ID)
	assert.Nil(t, err)
	assert.Equal(t, "Ada", found.Name)
}

func TestUpdateContactPartialFields(t *testing.T) {
	InitializeTestDb()
	testUser := createTestUser(t, "tony stark", "stark@avengers.com")

	contact := &Contact{
		Name:           "Ada",
		Phone:          "5551234",
		Email:          "ada@example.com",
		ProfilePicture: "uploads/ada-image",
	}
	assert.Nil(t, testUser.AddContact(contact))

	assert.Nil(t, testUser.UpdateContact(contact.ID, map[string]interface{}{"name": "Ada Lovelace"}))

	updated, err := testUser.FindContact(contact.ID)
	assert.Nil(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "5551234", updated.Phone)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, "uploads/ada-image", updated.ProfilePicture)
}

func TestDeleteContact(t *testing.T) {
	InitializeTestDb()
	testUser := createTestUser(t, "tony stark", "stark@avengers.com")

	contact := &Contact{Name: "Ada", Phone: "5551234"}
	assert.Nil(t, testUser.AddContact(contact))

	assert.Nil(t, testUser.DeleteContact(contact.ID))

	_, err := testUser.FindContact(contact.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "Expected contact row to be gone")
}
