package server

import (
	"path/filepath"

	"github.com/Daskott/rolodex/server/models"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
)

// registerSqliteBackupJob schedules a periodic upload of the sqlite db
// to the configured google storage bucket.
func registerSqliteBackupJob(cronScheduler *gocron.Scheduler, devMode bool) {
	_, err := cronScheduler.Cron(config.Google.Storage.SqliteBackupSchedule).
		Tag("backupSqliteDb").
		Do(func() {
			if err := backupSqliteDb(devMode); err != nil {
				logg.Errorf("backupSqliteDb: %v", err)
			}
		})

	if err != nil {
		logg.Errorf("unable to schedule sqlite backup: %v", err)
	}
}

func backupSqliteDb(devMode bool) error {
	if gcsClient == nil {
		return errors.New("google storage is not configured")
	}

	dbDir, err := models.DbDirectory(configDirectory(devMode))
	if err != nil {
		return err
	}

	return gcsClient.UploadFile(filepath.Join(dbDir, models.DB_NAME), config.Google.Storage.Prefix)
}

func sqliteBackupEnabled() bool {
	enabled, ok := config.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled && config.Google.Storage.Bucket != ""
}
