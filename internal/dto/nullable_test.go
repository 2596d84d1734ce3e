package dto

import (
	"encoding/json"
	"testing"
)

func TestNullableFloat64_Unmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  *float64
	}{
		{"число строкой", `"52.5"`, floatPtr(52.5)},
		{"число", `52.5`, floatPtr(52.5)},
		{"пустая строка", `""`, nil},
		{"null", `null`, nil},
		{"отрицательное", `"-13.4"`, floatPtr(-13.4)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n NullableFloat64
			if err := json.Unmarshal([]byte(tc.input), &n); err != nil {
				t.Fatalf("unmarshal вернул ошибку: %v", err)
			}

			if tc.want == nil {
				if n.Value != nil {
					t.Fatalf("ожидался nil, получили %v", *n.Value)
				}
				return
			}
			if n.Value == nil {
				t.Fatalf("ожидалось %v, получили nil", *tc.want)
			}
			if *n.Value != *tc.want {
				t.Fatalf("ожидалось %v, получили %v", *tc.want, *n.Value)
			}
		})
	}
}

func TestNullableFloat64_UnmarshalInvalid(t *testing.T) {
	var n NullableFloat64
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Fatalf("нечисловая строка должна давать ошибку")
	}
}

func TestNullableInt64_Unmarshal(t *testing.T) {
	var n NullableInt64
	if err := json.Unmarshal([]byte(`"250"`), &n); err != nil {
		t.Fatalf("unmarshal вернул ошибку: %v", err)
	}
	if n.Value == nil || *n.Value != 250 {
		t.Fatalf("ожидалось 250, получили %v", n.Value)
	}

	// Пустая строка означает отсутствие лимита, а не ноль
	n = NullableInt64{}
	if err := json.Unmarshal([]byte(`""`), &n); err != nil {
		t.Fatalf("unmarshal вернул ошибку: %v", err)
	}
	if n.Value != nil {
		t.Fatalf("пустая строка должна давать nil, получили %v", *n.Value)
	}
}

func TestObjectForm_Unmarshal(t *testing.T) {
	raw := []byte(`{
		"title_de": "Bank am See",
		"type": "bench",
		"latitude": "52.5",
		"longitude": 13.4,
		"price": "",
		"plaque_allowed": true,
		"plaque_max_chars": "120"
	}`)

	var form ObjectForm
	if err := json.Unmarshal(raw, &form); err != nil {
		t.Fatalf("unmarshal вернул ошибку: %v", err)
	}

	if form.Latitude.Value == nil || *form.Latitude.Value != 52.5 {
		t.Fatalf("широта должна распарситься из строки")
	}
	if form.Longitude.Value == nil || *form.Longitude.Value != 13.4 {
		t.Fatalf("долгота должна распарситься из числа")
	}
	if form.Price.Value != nil {
		t.Fatalf("пустая цена должна быть nil")
	}
	if form.PlaqueMaxChars.Value == nil || *form.PlaqueMaxChars.Value != 120 {
		t.Fatalf("лимит таблички должен распарситься из строки")
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
