package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/Daskott/rolodex/server/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Auth handlers
// --------------------------------------------------------------------------------//

func registerUser(rw http.ResponseWriter, r *http.Request) {
	data := models.User{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(data)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	_, err = models.FindUserBy("email", data.Email)
	if err == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"email is already taken"}}, http.StatusConflict)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err := models.CreateUser(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]string{"message": "user registered successfully"},
	}, http.StatusCreated)
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	decoder := json.NewDecoder(r.Body)
	decoder.Decode(&data)

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	accessToken, err := auth.EncodeJWT(auth.NewTokenClaims(user.Name, fmt.Sprint(user.ID)), authKeyPair)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]string{"access_token": accessToken},
	}, http.StatusOK)
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(keyPairJWK))
}

// ---------------------------------------------------------------------------------//
// User handlers
// --------------------------------------------------------------------------------//

func createUser(rw http.ResponseWriter, r *http.Request) {
	data := models.User{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(data)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	_, err = models.FindUserBy("email", data.Email)
	if err == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"email is already taken"}}, http.StatusConflict)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err := models.CreateUser(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// never echo the password hash back
	data.Password = ""
	writeResponse(rw, ResponsePayload{Success: true, Data: data}, http.StatusCreated)
}

func findAllUsers(rw http.ResponseWriter, r *http.Request) {
	users, err := models.FindAllUsers()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: users}, http.StatusOK)
}

func findUser(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := models.FindUserBy("id", vars["id"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"user not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusOK)
}

func updateUser(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data := make(map[string]interface{})

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	removeUnknownFields(data, map[string]bool{"name": true, "email": true, "password": true})
	if len(data) <= 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if errs := validateUserParams(data); len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserBy("id", vars["id"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"user not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err := user.Update(data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	user, err = models.FindUserBy("id", vars["id"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contact handlers
// --------------------------------------------------------------------------------//

func createContact(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	contact := models.Contact{}
	file, err := decodeContactCreateRequest(r, &contact)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}
	if file != nil {
		defer file.Close()
	}

	errs := validate.Struct(contact)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	if file != nil {
		if blobStorage == nil {
			writeResponse(rw, ResponsePayload{Errors: []string{"image storage is not configured"}}, http.StatusInternalServerError)
			return
		}

		object, err := blobStorage.UploadImage(r.Context(), file, uploadFolder())
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}
		contact.ProfilePicture = object.Name
	}

	if err := user.AddContact(&contact); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusCreated)
}

func findAllContacts(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := user.LoadContacts(); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	contacts := user.Contacts
	if contacts == nil {
		contacts = []models.Contact{}
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contacts}, http.StatusOK)
}

func searchContacts(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	query := r.URL.Query()
	filter := models.ContactFilter{
		Name:  query.Get("name"),
		Email: query.Get("email"),
		Phone: query.Get("phone"),
	}

	if filter == (models.ContactFilter{}) {
		writeResponse(rw,
			ResponsePayload{Errors: []string{"at least one of 'name', 'email' or 'phone' is required"}},
			http.StatusBadRequest)
		return
	}

	contact, err := user.SearchContact(filter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func findContact(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	vars := mux.Vars(r)

	contact, err := user.FindContact(vars["id"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	vars := mux.Vars(r)

	contact, err := user.FindContact(vars["id"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	data, file, err := decodeContactUpdateRequest(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}
	if file != nil {
		defer file.Close()
	}

	removeUnknownFields(data, map[string]bool{
		"name": true, "email": true, "phone": true,
		"contact_type": true, "longitude": true, "latitude": true,
	})
	if len(data) <= 0 && file == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if errs := validateContactParams(data); len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	if file != nil {
		if blobStorage == nil {
			writeResponse(rw, ResponsePayload{Errors: []string{"image storage is not configured"}}, http.StatusInternalServerError)
			return
		}

		object, err := blobStorage.UploadImage(r.Context(), file, uploadFolder())
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}

		// Only clean up the old image once the replacement upload has
		// succeeded. A failed delete leaves an orphaned blob behind,
		// but must not fail the contact update.
		if contact.ProfilePicture != "" {
			if err := blobStorage.DeleteImage(r.Context(), contact.ProfilePicture); err != nil {
				logg.Errorf("updateContact: %v", err)
			}
		}

		data["profile_picture"] = object.Name
	}

	if err := user.UpdateContact(vars["id"], data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	contact, err = user.FindContact(vars["id"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	vars := mux.Vars(r)

	contact, err := user.FindContact(vars["id"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// Remote image goes first; a failure there is logged but doesn't
	// keep the row around.
	if contact.ProfilePicture != "" && blobStorage != nil {
		if err := blobStorage.DeleteImage(r.Context(), contact.ProfilePicture); err != nil {
			logg.Errorf("deleteContact: %v", err)
		}
	}

	if err := user.DeleteContact(contact.ID); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Upload handlers
// --------------------------------------------------------------------------------//

func uploadImage(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"'file' is required"}}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if blobStorage == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"image storage is not configured"}}, http.StatusInternalServerError)
		return
	}

	object, err := blobStorage.UploadImage(r.Context(), file, uploadFolder())
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]string{"image_url": object.URL},
	}, http.StatusCreated)
}
