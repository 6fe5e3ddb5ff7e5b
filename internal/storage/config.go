package storage

// ArchiveMode selects where generated reports are archived
type ArchiveMode string

const (
	ArchiveModeNone ArchiveMode = "none"
	ArchiveModeS3   ArchiveMode = "s3"
)

// ArchiveConfig holds report archive configuration
type ArchiveConfig struct {
	Mode            ArchiveMode `env:"REPORT_ARCHIVE_MODE" env-default:"none"`
	Endpoint        string      `env:"S3_ENDPOINT"` // e.g. http://localhost:9000 for MinIO, empty for AWS
	Region          string      `env:"S3_REGION" env-default:"eu-west-3"`
	Bucket          string      `env:"S3_BUCKET" env-default:"mtsav-reports"`
	AccessKeyID     string      `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string      `env:"S3_SECRET_ACCESS_KEY"`
}

// Enabled reports whether reports should be archived
func (c ArchiveConfig) Enabled() bool {
	return c.Mode == ArchiveModeS3
}
