package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv renders the env-tagged fields of a struct (or pointer to one)
// as .env lines in field order. Zero values are left out so that
// envDefault applies when the file is loaded back.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", fmt.Errorf("env: nil %T", c)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("env: expected struct, got %s", v.Kind())
	}
	t := v.Type()

	var sb strings.Builder
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// "KEY,required,notEmpty" or "KEY"
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() {
			continue
		}

		str, err := formatValue(val, field.Tag.Get("envSeparator"))
		if err != nil {
			return "", fmt.Errorf("env: field %s: %w", field.Name, err)
		}
		sb.WriteString(key + "=" + quote(str) + "\n")
	}
	return sb.String(), nil
}

func formatValue(v reflect.Value, sep string) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			// time.Duration and friends
			return s.String(), nil
		}
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Slice:
		if sep == "" {
			sep = ","
		}
		items := make([]string, v.Len())
		for i := range items {
			s, err := formatValue(v.Index(i), "")
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return strings.Join(items, sep), nil
	default:
		return "", fmt.Errorf("unsupported kind %s", v.Kind())
	}
}

// quote wraps values godotenv would otherwise split or truncate.
func quote(s string) string {
	if s == "" || !strings.ContainsAny(s, " #\"'\\\n\t=") {
		return s
	}
	return strconv.Quote(s)
}
