// Package config loads the settings of the profile panel client from a .env
// file, an optional JSON file, command-line flags and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendCloudinary = "cloudinary"
	BackendS3         = "s3"
)

// Options holds the client configuration. It is read once at startup.
type Options struct {
	// APIURL is the base URL of the account backend.
	APIURL string `json:"api_url"`
	// UserID selects the account to edit when no session file exists yet.
	UserID string `json:"user_id"`
	// SessionFile persists the signed-in user between runs.
	SessionFile string `json:"session_file"`
	LogLevel    string `json:"log_level"`

	// Storage is either "cloudinary" or "s3".
	Storage string `json:"storage"`

	CloudinaryURL          string `json:"cloudinary_url"`
	CloudinaryCloudName    string `json:"cloudinary_cloud_name"`
	CloudinaryUploadPreset string `json:"cloudinary_upload_preset"`

	S3Bucket          string `json:"s3_bucket"`
	S3Endpoint        string `json:"s3_endpoint"`
	S3Region          string `json:"s3_region"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3AccessKeySecret string `json:"s3_access_key_secret"`
	// S3PublicURL is a format string with one %s for the object key.
	S3PublicURL string `json:"s3_public_url"`
	S3PathStyle bool   `json:"s3_path_style"`

	CAFile   string `json:"ca_file"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`
	// EnvFile is the path to the .env file.
	EnvFile string `json:"-"`
}

// Load parses args and the environment into Options. Precedence, lowest
// first: defaults, flags, JSON file, .env file, process environment.
func Load(args []string) (*Options, error) {
	opts := &Options{}

	fset := flag.NewFlagSet("client", flag.ContinueOnError)
	fset.StringVar(&opts.APIURL, "api", "http://localhost:8080", "account backend base URL")
	fset.StringVar(&opts.UserID, "user", "", "user id to edit")
	fset.StringVar(&opts.SessionFile, "session", "session.json", "session file")
	fset.StringVar(&opts.LogLevel, "log-level", "warn", "log level")
	fset.StringVar(&opts.Storage, "storage", BackendCloudinary, "image storage backend: cloudinary or s3")
	fset.StringVar(&opts.CloudinaryURL, "cloudinary-url", "https://api.cloudinary.com", "cloudinary API base URL")
	fset.StringVar(&opts.CloudinaryCloudName, "cloud", "", "cloudinary cloud name")
	fset.StringVar(&opts.CloudinaryUploadPreset, "preset", "", "cloudinary unsigned upload preset")
	fset.StringVar(&opts.S3Bucket, "bucket", "", "s3 bucket")
	fset.StringVar(&opts.S3Endpoint, "s3-endpoint", "", "s3 compatible endpoint")
	fset.StringVar(&opts.S3Region, "s3-region", "auto", "s3 region")
	fset.StringVar(&opts.S3PublicURL, "s3-public-url", "", "public URL format for uploaded objects")
	fset.BoolVar(&opts.S3PathStyle, "s3-path-style", false, "use path-style s3 addressing")
	fset.StringVar(&opts.CAFile, "ca", "", "path to CA certificate")
	fset.StringVar(&opts.CertFile, "cert", "", "path to client certificate")
	fset.StringVar(&opts.KeyFile, "key", "", "path to client key")
	fset.StringVar(&opts.Config, "config", "client.json", "path to config file")
	fset.StringVar(&opts.Config, "c", "client.json", "path to config file (shorthand)")
	fset.StringVar(&opts.EnvFile, "env", ".env", "path to .env file")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := opts.readFile(); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	opts.applyEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) readFile() error {
	if o.Config == "" {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error while reading env file: %w", err)
	}
	return env, nil
}

func (o *Options) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&o.APIURL, "API_URL")
	set(&o.UserID, "USER_ID")
	set(&o.SessionFile, "SESSION_FILE")
	set(&o.LogLevel, "LOG_LEVEL")
	set(&o.Storage, "STORAGE_BACKEND")
	set(&o.CloudinaryURL, "CLOUDINARY_URL")
	set(&o.CloudinaryCloudName, "CLOUDINARY_CLOUD_NAME")
	set(&o.CloudinaryUploadPreset, "CLOUDINARY_UPLOAD_PRESET")
	set(&o.S3Bucket, "S3_BUCKET")
	set(&o.S3Endpoint, "S3_ENDPOINT")
	set(&o.S3Region, "S3_REGION")
	set(&o.S3AccessKeyID, "S3_ACCESS_KEY_ID")
	set(&o.S3AccessKeySecret, "S3_ACCESS_KEY_SECRET")
	set(&o.S3PublicURL, "S3_PUBLIC_URL")
	set(&o.CAFile, "CA_FILE")
	set(&o.CertFile, "CERT_FILE")
	set(&o.KeyFile, "KEY_FILE")
	if v := getenv("S3_PATH_STYLE"); v != "" {
		o.S3PathStyle = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks that the selected storage backend is fully configured.
func (o *Options) Validate() error {
	if o.APIURL == "" {
		return errors.New("api url is required")
	}

	var missing []string
	require := func(v, name string) {
		if v == "" {
			missing = append(missing, name)
		}
	}

	switch o.Storage {
	case BackendCloudinary:
		require(o.CloudinaryCloudName, "CLOUDINARY_CLOUD_NAME")
		require(o.CloudinaryUploadPreset, "CLOUDINARY_UPLOAD_PRESET")
	case BackendS3:
		require(o.S3Bucket, "S3_BUCKET")
		require(o.S3AccessKeyID, "S3_ACCESS_KEY_ID")
		require(o.S3AccessKeySecret, "S3_ACCESS_KEY_SECRET")
		require(o.S3PublicURL, "S3_PUBLIC_URL")
	default:
		return fmt.Errorf("unknown storage backend %q", o.Storage)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing %s configuration: %s", o.Storage, strings.Join(missing, ", "))
	}
	return nil
}
