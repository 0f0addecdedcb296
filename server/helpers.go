package server

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/Daskott/rolodex/server/models"
	"github.com/Daskott/rolodex/utils"
	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
)

const (
	MAX_UPLOAD_SIZE       = 10 << 20 // 10MB
	DEFAULT_UPLOAD_FOLDER = "uploads"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

func RegisterValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
}

func validateUserParams(data map[string]interface{}) []string {
	var errs []string

	if data["name"] != nil && strings.TrimSpace(fmt.Sprintf("%v", data["name"])) == "" {
		errs = append(errs, "name cannot be empty")
	}

	if data["email"] != nil {
		if err := validate.Var(fmt.Sprintf("%v", data["email"]), "email"); err != nil {
			errs = append(errs, "email is invalid")
		}
	}

	if data["password"] != nil {
		if err := validate.Var(fmt.Sprintf("%v", data["password"]), "min=8,password"); err != nil {
			errs = append(errs, "password must be at least 8 characters, with no spaces")
		}
	}

	return errs
}

func validateContactParams(data map[string]interface{}) []string {
	var errs []string

	if data["name"] != nil && strings.TrimSpace(fmt.Sprintf("%v", data["name"])) == "" {
		errs = append(errs, "name cannot be empty")
	}

	if data["phone"] != nil && strings.TrimSpace(fmt.Sprintf("%v", data["phone"])) == "" {
		errs = append(errs, "phone cannot be empty")
	}

	if data["email"] != nil && data["email"] != "" {
		if err := validate.Var(fmt.Sprintf("%v", data["email"]), "email"); err != nil {
			errs = append(errs, "email is invalid")
		}
	}

	if data["contact_type"] != nil && data["contact_type"] != "" {
		if !models.ContactTypeNameMap[fmt.Sprintf("%v", data["contact_type"])] {
			errs = append(errs, "contact_type must be one of: family, friend, work, other")
		}
	}

	return errs
}

// decodeContactCreateRequest fills 'contact' from either a JSON body or a
// multipart form, returning the uploaded file when one was attached.
func decodeContactCreateRequest(r *http.Request, contact *models.Contact) (multipart.File, error) {
	if !isMultipart(r) {
		return nil, json.NewDecoder(r.Body).Decode(contact)
	}

	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		return nil, err
	}

	contact.Name = r.FormValue("name")
	contact.Email = r.FormValue("email")
	contact.Phone = r.FormValue("phone")
	contact.ContactType = r.FormValue("contact_type")

	if value := r.FormValue("longitude"); value != "" {
		longitude, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("longitude must be a number")
		}
		contact.Longitude = &longitude
	}

	if value := r.FormValue("latitude"); value != "" {
		latitude, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("latitude must be a number")
		}
		contact.Latitude = &latitude
	}

	return formFile(r)
}

// decodeContactUpdateRequest returns the partial update fields from either a
// JSON body or a multipart form, plus the replacement image if one was attached.
func decodeContactUpdateRequest(r *http.Request) (map[string]interface{}, multipart.File, error) {
	data := make(map[string]interface{})

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, nil, err
		}
		return data, nil, nil
	}

	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		return nil, nil, err
	}

	for _, field := range []string{"name", "email", "phone", "contact_type"} {
		if values := r.MultipartForm.Value[field]; len(values) > 0 {
			data[field] = values[0]
		}
	}

	for _, field := range []string{"longitude", "latitude"} {
		if values := r.MultipartForm.Value[field]; len(values) > 0 {
			value, err := strconv.ParseFloat(values[0], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%v must be a number", field)
			}
			data[field] = value
		}
	}

	file, err := formFile(r)
	if err != nil {
		return nil, nil, err
	}

	return data, file, nil
}

func formFile(r *http.Request) (multipart.File, error) {
	file, _, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func uploadFolder() string {
	if config != nil && config.Google.Storage.UploadFolder != "" {
		return config.Google.Storage.UploadFolder
	}

	return DEFAULT_UPLOAD_FOLDER
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	user, err := models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims, User: user}
}

// currentUser returns the authenticated caller. Only safe on routes
// behind protectedRouteMiddleware.
func currentUser(r *http.Request) *models.User {
	decodedJWT := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	return decodedJWT.User
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Rolodex server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(cronScheduler *gocron.Scheduler, server *http.Server, backupDb, devMode bool) {
	cronScheduler.Stop()

	if backupDb {
		if err := backupSqliteDb(devMode); err != nil {
			logg.Errorf("backupSqliteDb: %v", err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Rolodex server shutdown failed:%+s", err)
	}

	logg.Infof("Rolodex server stopped properly")
}

// configDirectory retrieves the directory rolodex keeps its data in
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'rolodex' folder in home directory for prod
	configFolderName := "rolodex"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
