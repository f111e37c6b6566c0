// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	errExpectedPointerToStruct = errors.New("expected a pointer to a struct")
	errUnsupportedSliceType    = errors.New("unsupported slice type")
	errUnsupportedFieldType    = errors.New("unsupported field type")
)

var durationType = reflect.TypeOf(time.Duration(0))

// EnvVar describes one environment-settable field.
type EnvVar struct {
	Name      string        // environment variable name
	Section   string        // name of the enclosing top-level section
	Overwrite bool          // whether the variable replaces a non-zero value
	Value     reflect.Value // current value of the field
}

// EnvVars lists the environment variables recognized for cfg, in declaration order.
func EnvVars(cfg *ClientConfig) []EnvVar {
	var vars []EnvVar

	// Walking a *ClientConfig cannot fail.
	_ = walkEnv(reflect.ValueOf(cfg).Elem(), "", func(v EnvVar, _ reflect.StructField) error {
		vars = append(vars, v)

		return nil
	})

	return vars
}

// readEnv populates the struct pointed to by target from environment variables.
func readEnv(target any) error {
	structValue := reflect.ValueOf(target)
	if structValue.Kind() != reflect.Ptr {
		return fmt.Errorf("%w, got %s", errExpectedPointerToStruct, structValue.Kind())
	}

	structValue = structValue.Elem()
	if structValue.Kind() != reflect.Struct {
		return fmt.Errorf("%w, got a pointer to %s", errExpectedPointerToStruct, structValue.Kind())
	}

	return walkEnv(structValue, "", func(v EnvVar, sf reflect.StructField) error {
		raw, exists := os.LookupEnv(v.Name)
		if !exists || !v.Value.CanSet() {
			return nil
		}

		// Without overwrite, a value already set by YAML wins.
		if !v.Overwrite && !v.Value.IsZero() {
			return nil
		}

		return setFieldValue(v.Value, sf, v.Name, raw)
	})
}

// walkEnv calls fn for every field carrying an env tag, descending into nested structs.
func walkEnv(
	structValue reflect.Value,
	section string,
	fn func(EnvVar, reflect.StructField) error,
) error {
	structType := structValue.Type()

	for i := range structValue.NumField() {
		field := structValue.Field(i)
		sf := structType.Field(i)

		tag, tagged := sf.Tag.Lookup("env")
		if !tagged {
			if field.Kind() == reflect.Struct && field.Type() != durationType {
				inner := section
				if inner == "" {
					inner = sf.Name
				}

				if err := walkEnv(field, inner, fn); err != nil {
					return err
				}
			}

			continue
		}

		parts := strings.Split(tag, ",")

		if err := fn(EnvVar{
			Name:      parts[0],
			Section:   section,
			Overwrite: slices.Contains(parts[1:], "overwrite"),
			Value:     field,
		}, sf); err != nil {
			return err
		}
	}

	return nil
}

// setFieldValue parses raw according to the field's type and stores it.
func setFieldValue(field reflect.Value, sf reflect.StructField, envVarName, raw string) error {
	parseErr := func(kind string, err error) error {
		return fmt.Errorf("failed to parse %s for %s from env var %s (%s): %w", kind, sf.Name, envVarName, raw, err)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return parseErr("duration", err)
			}

			field.SetInt(int64(d))

			return nil
		}

		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return parseErr("int", err)
		}

		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return parseErr("bool", err)
		}

		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w for field %s", errUnsupportedSliceType, sf.Name)
		}

		values := make([]string, 0)

		for value := range strings.SplitSeq(raw, ",") {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				values = append(values, trimmed)
			}
		}

		converted := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, value := range values {
			converted.Index(i).SetString(value)
		}

		field.Set(converted)
	default:
		return fmt.Errorf("%w for field %s: %s", errUnsupportedFieldType, sf.Name, field.Kind())
	}

	return nil
}
