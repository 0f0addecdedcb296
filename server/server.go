package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/Daskott/rolodex/server/cron"
	"github.com/Daskott/rolodex/server/gstorage"
	"github.com/Daskott/rolodex/server/logger"
	"github.com/Daskott/rolodex/server/models"
	"github.com/Daskott/rolodex/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

var (
	logg     = logger.NewLogger()
	validate = validator.New()

	config      *shared.ServerConfig
	authKeyPair *key.KeyPair

	blobStorage gstorage.Storage
	gcsClient   *gstorage.GStorage
)

func init() {
	fatalOnError(RegisterValidators(validate))
}

// Start boots the rolodex API server:
// validates config, migrates the db, wires up google storage(if configured),
// schedules the sqlite backup & serves the REST API until SIGINT/SIGTERM.
func Start(vConfig *viper.Viper, devMode bool) {
	serverConfig := &shared.ServerConfig{}
	fatalOnError(vConfig.Unmarshal(serverConfig))
	fatalOnError(validate.Struct(serverConfig))
	config = serverConfig

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(serverConfig.Rolodex.PrivateKeyPem)
	fatalOnError(err)
	authKeyPair = keyPair

	fatalOnError(models.AutoMigrate(serverConfig.Sqlite.PassPhrase, configDirectory(devMode)))

	if serverConfig.Google.Storage.Bucket != "" {
		gcsClient, err = gstorage.NewGStorage(
			serverConfig.Google.ApplicationCredentials,
			serverConfig.Google.Storage.Bucket,
		)
		fatalOnError(err)
		blobStorage = gcsClient
	}

	cronScheduler := cron.NewScheduler(serverConfig.Rolodex.Cron.TimeZone)
	backupDb := sqliteBackupEnabled()
	if backupDb {
		registerSqliteBackupJob(cronScheduler, devMode)
	}
	cronScheduler.StartAsync()

	server := &http.Server{
		Handler: NewRouter(),
		Addr:    fmt.Sprintf(":%v", serverConfig.Rolodex.Listener.Port),
	}
	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(cronScheduler, server, backupDb, devMode)
}

// NewRouter registers all the API routes under the '/api' prefix.
// Only the contact routes sit behind the auth guard.
func NewRouter() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(initialContextMiddleware)

	api.HandleFunc("/auth/register", registerUser).Methods("POST")
	api.HandleFunc("/auth/login", logIn).Methods("POST")
	api.HandleFunc("/jwks", jwks).Methods("GET")

	api.HandleFunc("/upload/image", uploadImage).Methods("POST")

	api.HandleFunc("/users", createUser).Methods("POST")
	api.HandleFunc("/users", findAllUsers).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", findUser).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", updateUser).Methods("PATCH")

	contactsRouter := api.PathPrefix("/contacts").Subrouter()
	contactsRouter.Use(protectedRouteMiddleware)
	contactsRouter.HandleFunc("", createContact).Methods("POST")
	contactsRouter.HandleFunc("", findAllContacts).Methods("GET")
	contactsRouter.HandleFunc("/search", searchContacts).Methods("GET")
	contactsRouter.HandleFunc("/{id:[0-9]+}", findContact).Methods("GET")
	contactsRouter.HandleFunc("/{id:[0-9]+}", updateContact).Methods("PATCH")
	contactsRouter.HandleFunc("/{id:[0-9]+}", deleteContact).Methods("DELETE")

	return router
}
