// Package envconfig adapts the common/os.go env-tag loader convention
// (SetConfigFromEnvVars) to populate the engine's Config struct for the
// example daemon (cmd/eventcored). An embedded SDK caller builds Config
// via functional options instead; this is purely for the standalone
// binary.
package envconfig

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var loadDotEnvOnce sync.Once

// LoadDotEnv loads a .env file in the working directory, if present.
// Safe to call more than once; only the first call has effect.
func LoadDotEnv() {
	loadDotEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			fmt.Println("envconfig: no .env file found, using process environment")
		}
	})
}

// GetenvOrDefault returns os.Getenv(key), or defaultValue if unset/blank.
func GetenvOrDefault(key, defaultValue string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return defaultValue
	}

	return v
}

// Load populates s's exported fields from process environment
// variables named by their `env:"..."` struct tag. s must be a pointer
// to struct. Supported field kinds: string, bool, and the integer
// kinds; fields tagged `env:"-"` or untagged are left untouched.
func Load(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("envconfig: s must be a pointer to struct")
	}

	elem := v.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag, ok := field.Tag.Lookup("env")
		if !ok || tag == "-" {
			continue
		}

		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}

		raw, present := os.LookupEnv(tag)
		if !present {
			continue
		}

		switch fv.Kind() {
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err == nil {
				fv.SetBool(b)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				fv.SetInt(n)
			}
		case reflect.String:
			fv.SetString(raw)
		}
	}

	return nil
}
