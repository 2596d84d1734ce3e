package dto

import (
	"bytes"
	"fmt"
	"strconv"
)

// Формы присылают числовые поля как строки ("52.5"), числа или пустые строки.
// Nullable-типы приводят все варианты к числу или NULL: пустая строка и null
// сохраняются как NULL, никогда как 0 или NaN.

// NullableFloat64 принимает число, строку с числом, "" и null.
type NullableFloat64 struct {
	Value *float64
}

func (n *NullableFloat64) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)

	if isJSONEmpty(raw) {
		n.Value = nil
		return nil
	}

	if raw[0] == '"' {
		raw = bytes.Trim(raw, `"`)
	}

	parsed, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("некорректное числовое значение %q", string(data))
	}

	n.Value = &parsed
	return nil
}

func (n NullableFloat64) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(*n.Value, 'f', -1, 64)), nil
}

// NullableInt64 принимает целое число, строку с целым числом, "" и null.
type NullableInt64 struct {
	Value *int64
}

func (n *NullableInt64) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)

	if isJSONEmpty(raw) {
		n.Value = nil
		return nil
	}

	if raw[0] == '"' {
		raw = bytes.Trim(raw, `"`)
	}

	parsed, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("некорректное целочисленное значение %q", string(data))
	}

	n.Value = &parsed
	return nil
}

func (n NullableInt64) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*n.Value, 10)), nil
}

// isJSONEmpty: null, "" и пустой ввод означают отсутствие значения.
func isJSONEmpty(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`))
}
