package models

import (
	"testing"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/stretchr/testify/assert"
)

func TestCreateUser(t *testing.T) {
	InitializeTestDb()

	testUser := &User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"}
	err := CreateUser(testUser)
	assert.Nil(t, err, "Should create 'testUser' record")
	assert.NotZero(t, testUser.ID)

	passwordHash, err := FindUserPassword("stark@avengers.com")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", passwordHash, "Expected password to be stored as a hash")
	assert.True(t, auth.CheckPasswordHash("very-secure", passwordHash))
}

func TestCreateUserWithDuplicateEmail(t *testing.T) {
	InitializeTestDb()

	err := CreateUser(&User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"})
	assert.Nil(t, err)

	err = CreateUser(&User{Name: "anthony stark", Email: "stark@avengers.com", Password: "also-secure"})
	assert.NotNil(t, err, "Expected second user with same email to be rejected")

	users, err := FindAllUsers()
	assert.Nil(t, err)
	assert.Len(t, users, 1, "Expected exactly one user record to be persisted")
}

func TestFindUserBy(t *testing.T) {
	InitializeTestDb()

	testUser := &User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"}
	assert.Nil(t, CreateUser(testUser))

	user, err := FindUserBy("email", "stark@avengers.com")
	assert.Nil(t, err)
	assert.Equal(t, testUser.ID, user.ID)
	assert.Empty(t, user.Password, "Expected password to be excluded from reads")

	_, err = FindUserBy("email", "no-one@avengers.com")
	assert.NotNil(t, err)
}

func TestUpdateUser(t *testing.T) {
	InitializeTestDb()

	testUser := &User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"}
	assert.Nil(t, CreateUser(testUser))

	err := testUser.Update(map[string]interface{}{"name": "iron man"})
	assert.Nil(t, err)

	user, err := FindUserBy("id", testUser.ID)
	assert.Nil(t, err)
	assert.Equal(t, "iron man", user.Name)
	assert.Equal(t, "stark@avengers.com", user.Email, "Expected untouched fields to remain unchanged")

	// a new password is re-hashed on update
	err = testUser.Update(map[string]interface{}{"password": "even-more-secure"})
	assert.Nil(t, err)

	passwordHash, err := FindUserPassword("stark@avengers.com")
	assert.Nil(t, err)
	assert.True(t, auth.CheckPasswordHash("even-more-secure", passwordHash))
}
