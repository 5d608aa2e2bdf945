package configuration

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/adampresley/configinator"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	AdminEmail                 string `flag:"adminemail" env:"ADMIN_EMAIL" default:"" description:"Email of the admin account to create or update at startup"`
	AdminPassword              string `flag:"adminpassword" env:"ADMIN_PASSWORD" default:"" description:"Password of the admin account to create or update at startup"`
	AwsEndpointUrl             string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion                  string `flag:"awsregion" env:"AWS_REGION" default:"us-east-1" description:"AWS region"`
	AwsAccessKeyId             string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey         string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	ContactFrom                string `flag:"contactfrom" env:"CONTACT_FROM" default:"Portfolio Contact <contact@rikkicasupanan.com>" description:"Sender of relayed contact messages"`
	ContactTo                  string `flag:"contactto" env:"CONTACT_TO" default:"" description:"Inbox that receives contact messages" validate:"required"`
	CookieSecret               string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"" description:"Secret for encoding cookies" validate:"required"`
	DeleteTokenSecret          string `flag:"deletetokensecret" env:"DELETE_TOKEN_SECRET" default:"" description:"Secret for signing delete confirmations" validate:"required"`
	DSN                        string `flag:"dsn" env:"DSN" default:"file:./data/portfolio.db?_pragma=foreign_keys(1)" description:"Privileged (read/write) data source name" validate:"required"`
	GalleryBucket              string `flag:"gallerybucket" env:"GALLERY_BUCKET" default:"gallery" description:"Bucket holding gallery photos" validate:"required"`
	GalleryPublicBaseURL       string `flag:"gallerypublicbaseurl" env:"GALLERY_PUBLIC_BASE_URL" default:"http://localhost:4566/gallery" description:"Public base URL of the gallery bucket" validate:"required,url"`
	Host                       string `flag:"host" env:"HOST" default:"localhost:8080" description:"The address and port to bind the HTTP server to"`
	LogLevel                   string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'" validate:"oneof=debug info warn error"`
	MaxThumbnailWorkers        int    `flag:"mtw" env:"MAX_THUMBNAIL_WORKERS" default:"10" description:"Maximum number of concurrent thumbnail workers" validate:"min=1"`
	OperatorEmail              string `flag:"operatoremail" env:"OPERATOR_EMAIL" default:"" description:"Where reconciliation reports are sent. Empty disables the email"`
	OrphanGraceHours           int    `flag:"orphangracehours" env:"ORPHAN_GRACE_HOURS" default:"24" description:"Age after which an unregistered stored file is removed" validate:"min=1"`
	PublicDSN                  string `flag:"publicdsn" env:"PUBLIC_DSN" default:"file:./data/portfolio.db?mode=ro" description:"Restricted (read-only) data source name for public pages" validate:"required"`
	ReconcileIntervalHours     int    `flag:"reconcileintervalhours" env:"RECONCILE_INTERVAL_HOURS" default:"24" description:"How often gallery storage is reconciled with the database" validate:"min=1"`
	RedisURL                   string `flag:"redisurl" env:"REDIS_URL" default:"" description:"Redis URL for the page cache. Empty disables caching"`
	ResendApiKey               string `flag:"resendapikey" env:"RESEND_API_KEY" default:"" description:"API key for sending emails" validate:"required"`
	UploadURLExpirationMinutes int    `flag:"uploadurlexpiration" env:"UPLOAD_URL_EXPIRATION_MINUTES" default:"120" description:"Lifetime of signed upload URLs in minutes" validate:"min=1"`
}

/*
LoadConfig reads flags and environment, then panics if a required
setting is missing. The process never starts half configured.
*/
func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)

	if err := config.Validate(); err != nil {
		panic(err)
	}

	return config
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func (c Config) UploadURLExpiration() time.Duration {
	return time.Duration(c.UploadURLExpirationMinutes) * time.Minute
}

func (c Config) OrphanGracePeriod() time.Duration {
	return time.Duration(c.OrphanGraceHours) * time.Hour
}

func (c Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalHours) * time.Hour
}

/*
ContactFromEmail is the bare address part of ContactFrom.
*/
func (c Config) ContactFromEmail() string {
	address, err := mail.ParseAddress(c.ContactFrom)

	if err != nil {
		return c.ContactFrom
	}

	return address.Address
}
