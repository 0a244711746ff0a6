// Package config contains utilities for loading configs
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/go-playground/validator/v10"
)

const (
	configFilePath     = "/data/foodgram.yaml"
	appSecretBytes     = 32
	appSecretFilePerms = 0o600
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

type StorageBackend string

const (
	StorageLocal StorageBackend = "local"
	StorageS3    StorageBackend = "s3"
)

func (s StorageBackend) Validate() error {
	switch s {
	case StorageLocal, StorageS3:
		return nil
	}
	return fmt.Errorf("unknown storage backend: %q", s)
}

type AppSecretValue string

func (a *AppSecretValue) Validate() error {
	if a == nil {
		return errors.New("secret should not be nil")
	}
	if len([]byte(*a)) < appSecretBytes {
		return errors.New("secret should be at least 32 bytes")
	}
	return nil
}

func splitFieldList(param string) []string {
	// "A,B,C" or "A B C"
	param = strings.ReplaceAll(param, " ", ",")
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// allOrNothing implements a cross-field validator for go-playground/validator.
//
// It succeeds only if either all listed fields have zero values or all
// listed fields have non-zero values. Any mixed state fails. The validator
// is attached to a placeholder field and inspects the parent struct; field
// names are provided as a comma- or space-separated tag parameter
// (e.g. `validate:"allOrNothing=A,B,C"`).
func allOrNothing(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		if parent.IsNil() {
			return true // nothing to validate
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}

	names := splitFieldList(fl.Param())
	if len(names) == 0 {
		return false
	}

	hasZero := false
	hasNonZero := false

	for _, name := range names {
		f := parent.FieldByName(name)
		if !f.IsValid() {
			return false // field name typo / not found
		}

		for (f.Kind() == reflect.Pointer || f.Kind() == reflect.Interface) && !f.IsNil() {
			f = f.Elem()
		}

		if f.IsZero() {
			hasZero = true
		} else {
			hasNonZero = true
		}

		if hasZero && hasNonZero {
			return false
		}
	}

	return true
}

func registerAllOrNothing(v *validator.Validate) {
	_ = v.RegisterValidation("allOrNothing", allOrNothing)
}

type selfValidator interface {
	Validate() error
}

// validateFn delegates to the field's own Validate method.
func validateFn(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.CanAddr() {
		f = f.Addr()
	}
	if v, ok := f.Interface().(selfValidator); ok {
		return v.Validate() == nil
	}
	if v, ok := fl.Field().Interface().(selfValidator); ok {
		return v.Validate() == nil
	}
	return false
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerAllOrNothing(v)
	_ = v.RegisterValidation("validateFn", validateFn)
	return v
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors) //nolint:errorlint
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		if e.Tag() == "allOrNothing" {
			// Extract the struct name from the namespace
			// e.g., "Config.S3.Validate" -> "S3"
			namespace := e.Namespace()
			parts := strings.Split(namespace, ".")
			var structName string
			//nolint:mnd
			if len(parts) >= 2 {
				structName = parts[len(parts)-2]
			}

			var fields string
			switch structName {
			case "Database":
				fields = "Port, Host, Database, User, and Password"
			case "S3":
				fields = "Endpoint, Bucket, AccessKey, and SecretKey"
			default:
				fields = "all related fields"
			}

			return fmt.Errorf(
				"%s configuration is incomplete: either all fields must be set (%s) or all must be empty",
				structName, fields)
		}
	}

	return err
}

type AppSecret struct {
	Value   *AppSecretValue `yaml:"value" validate:"omitempty,validateFn"`
	Path    string          `yaml:"path" validate:"omitempty,filepath"`
	Version string          `yaml:"version"`
}

type Database struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Port Host Database User Password"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Endpoint Bucket AccessKey SecretKey"`
}

type FileStore struct {
	Backend   StorageBackend `yaml:"backend" validate:"omitempty,validateFn"`
	Volume    string         `yaml:"volume"`
	URLPrefix string         `yaml:"url_prefix"`
	S3        S3             `yaml:"s3"`
}

// Recipes carries the validation bounds applied to recipe input.
type Recipes struct {
	MinCookingTime      int `yaml:"min_cooking_time" validate:"gt=0"`
	MaxCookingTime      int `yaml:"max_cooking_time" validate:"gtefield=MinCookingTime"`
	MinIngredientAmount int `yaml:"min_ingredient_amount" validate:"gt=0"`
	MaxIngredientAmount int `yaml:"max_ingredient_amount" validate:"gtefield=MinIngredientAmount"`
}

type Pagination struct {
	PageSize int `yaml:"page_size" validate:"gt=0"`
}

// Ingredients configures the catalog bootstrap. Source is a JSON file
// path or an HTTP(S) URL; empty disables the bootstrap.
type Ingredients struct {
	Source string `yaml:"source"`
}

type Config struct {
	AppSecret   AppSecret   `yaml:"app_secret"`
	Database    Database    `yaml:"database"`
	FileStore   FileStore   `yaml:"filestore"`
	Recipes     Recipes     `yaml:"recipes"`
	Pagination  Pagination  `yaml:"pagination"`
	Ingredients Ingredients `yaml:"ingredients"`
	HostOrigin  string      `yaml:"host_origin" validate:"url"`
	Env         string      `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
}

func newAppSecret() (string, error) {
	token := make([]byte, appSecretBytes)
	if _, err := rand.Reader.Read(token); err != nil {
		return "", fmt.Errorf("creating app secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

func loadAppSecret(config *Config) error {
	if config.AppSecret.Value != nil {
		return nil
	}

	var secret string
	if f1, err := os.Lstat(config.AppSecret.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking secret path: %w", err)
		}

		file, err := os.OpenFile(config.AppSecret.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, appSecretFilePerms)
		if err != nil {
			return fmt.Errorf("creating secret file: %w", err)
		}
		defer func() { _ = file.Close() }()

		secret, err = newAppSecret()
		if err != nil {
			return fmt.Errorf("generating new app secret: %w", err)
		}

		if _, err := file.WriteString(secret); err != nil {
			return fmt.Errorf("writing secret file: %w", err)
		}
	} else {
		if f1.IsDir() {
			return fmt.Errorf("expected file, got directory at %q", config.AppSecret.Path)
		}
		data, err := os.ReadFile(config.AppSecret.Path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		secret = string(data)
	}
	val := AppSecretValue(secret)
	config.AppSecret.Value = &val
	return nil
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntSetting(key, raw string, dst *int) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s (%q): %w", key, raw, err)
	}
	*dst = v
	return nil
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		HostOrigin: loadWithDefault("HOST_ORIGIN", "http://localhost:8080"),
		Env:        loadWithDefault("ENV", EnvDev),
	}

	// AppSecret
	appSecretValue := AppSecretValue(loadWithDefault("APP_SECRET", ""))
	conf.AppSecret = AppSecret{
		Path:    loadWithDefault("APP_SECRET_PATH", "/data/secret"),
		Version: loadWithDefault("APP_SECRET_VERSION", "1"),
	}
	if appSecretValue != "" {
		conf.AppSecret.Value = &appSecretValue
	}

	// Database
	conf.Database = Database{
		Host:     loadWithDefault("DATABASE_HOST", "localhost"),
		Database: loadWithDefault("DATABASE", ""),
		User:     loadWithDefault("DATABASE_USER", ""),
		Password: loadWithDefault("DATABASE_PASSWORD", ""),
	}
	databasePort := loadWithDefault("DATABASE_PORT", "5432")
	if port, err := strconv.ParseUint(databasePort, 10, 16); err != nil {
		return conf, fmt.Errorf("invalid DATABASE_PORT (%q): %w", databasePort, err)
	} else {
		conf.Database.Port = uint16(port)
	}

	// FileStore
	conf.FileStore = FileStore{
		Backend:   StorageBackend(loadWithDefault("FILESTORE_BACKEND", string(StorageLocal))),
		Volume:    loadWithDefault("FILESTORE_VOLUME", "/data/media"),
		URLPrefix: loadWithDefault("FILESTORE_URL_PREFIX", "/media"),
		S3: S3{
			Endpoint:  loadWithDefault("S3_ENDPOINT", ""),
			Bucket:    loadWithDefault("S3_BUCKET", ""),
			AccessKey: loadWithDefault("S3_ACCESS_KEY", ""),
			SecretKey: loadWithDefault("S3_SECRET_KEY", ""),
		},
	}
	s3UseSSL := loadWithDefault("S3_USE_SSL", "false")
	if b, err := strconv.ParseBool(s3UseSSL); err != nil {
		return conf, fmt.Errorf("invalid S3_USE_SSL (%q): %w", s3UseSSL, err)
	} else {
		conf.FileStore.S3.UseSSL = b
	}

	// Recipe bounds
	bounds := []struct {
		key string
		def string
		dst *int
	}{
		{"MIN_COOKING_TIME", "1", &conf.Recipes.MinCookingTime},
		{"MAX_COOKING_TIME", "32000", &conf.Recipes.MaxCookingTime},
		{"MIN_INGREDIENT_AMOUNT", "1", &conf.Recipes.MinIngredientAmount},
		{"MAX_INGREDIENT_AMOUNT", "32000", &conf.Recipes.MaxIngredientAmount},
	}
	for _, b := range bounds {
		if err := parseIntSetting(b.key, loadWithDefault(b.key, b.def), b.dst); err != nil {
			return conf, err
		}
	}

	// Pagination
	if err := parseIntSetting("PAGE_SIZE", loadWithDefault("PAGE_SIZE", "6"), &conf.Pagination.PageSize); err != nil {
		return conf, err
	}

	// Ingredient catalog bootstrap
	conf.Ingredients.Source = loadWithDefault("INGREDIENTS_SOURCE", "")

	validate := newValidator()
	if err := validate.Struct(conf); err != nil {
		return conf, formatValidationError(err)
	}

	if err := loadAppSecret(&conf); err != nil {
		return conf, fmt.Errorf("loading app secret: %w", err)
	}

	return conf, nil
}

func applyDefaults(config *Config) {
	if config.AppSecret.Path == "" {
		config.AppSecret.Path = "/data/secret"
	}
	if config.AppSecret.Version == "" {
		config.AppSecret.Version = "1"
	}
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.HostOrigin == "" {
		config.HostOrigin = "http://localhost:8080"
	}
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.FileStore.Backend == "" {
		config.FileStore.Backend = StorageLocal
	}
	if config.FileStore.Volume == "" {
		config.FileStore.Volume = "/data/media"
	}
	if config.FileStore.URLPrefix == "" {
		config.FileStore.URLPrefix = "/media"
	}
	if config.Recipes.MinCookingTime == 0 {
		config.Recipes.MinCookingTime = 1
	}
	if config.Recipes.MaxCookingTime == 0 {
		config.Recipes.MaxCookingTime = 32000
	}
	if config.Recipes.MinIngredientAmount == 0 {
		config.Recipes.MinIngredientAmount = 1
	}
	if config.Recipes.MaxIngredientAmount == 0 {
		config.Recipes.MaxIngredientAmount = 32000
	}
	if config.Pagination.PageSize == 0 {
		config.Pagination.PageSize = 6
	}
}

func loadConfigFromFile(path string) (Config, error) {
	// Read file
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal into config
	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	// Validate config
	validate := newValidator()
	if err := validate.Struct(config); err != nil {
		return Config{}, formatValidationError(err)
	}

	if err := loadAppSecret(&config); err != nil {
		return Config{}, fmt.Errorf("loading app secret: %w", err)
	}

	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}

	return loadConfigFromEnv()
}
