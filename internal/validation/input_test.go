package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.org",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("email %q должен быть валидным: %v", email, err)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		"user name@example.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("email %q должен быть отклонён", email)
		}
	}
}

func TestValidateLatitudeLongitude(t *testing.T) {
	if err := ValidateLatitude(nil); err != nil {
		t.Fatalf("nil широта допустима: %v", err)
	}
	if err := ValidateLatitude(floatPtr(52.52)); err != nil {
		t.Fatalf("широта 52.52 валидна: %v", err)
	}
	if err := ValidateLatitude(floatPtr(90.1)); err == nil {
		t.Fatalf("широта 90.1 должна быть отклонена")
	}
	if err := ValidateLatitude(floatPtr(-90.1)); err == nil {
		t.Fatalf("широта -90.1 должна быть отклонена")
	}

	if err := ValidateLongitude(floatPtr(180)); err != nil {
		t.Fatalf("долгота 180 валидна: %v", err)
	}
	if err := ValidateLongitude(floatPtr(-180.5)); err == nil {
		t.Fatalf("долгота -180.5 должна быть отклонена")
	}
}

func TestValidatePrice(t *testing.T) {
	if err := ValidatePrice(nil); err != nil {
		t.Fatalf("nil цена допустима: %v", err)
	}
	if err := ValidatePrice(floatPtr(0)); err != nil {
		t.Fatalf("нулевая цена допустима: %v", err)
	}
	if err := ValidatePrice(floatPtr(-1)); err == nil {
		t.Fatalf("отрицательная цена должна быть отклонена")
	}
	if err := ValidatePrice(floatPtr(MaxPrice + 1)); err == nil {
		t.Fatalf("цена выше максимума должна быть отклонена")
	}
}

func TestValidatePlaque(t *testing.T) {
	if err := ValidatePlaque(true, nil); err != nil {
		t.Fatalf("табличка без лимита допустима: %v", err)
	}
	if err := ValidatePlaque(true, intPtr(120)); err != nil {
		t.Fatalf("лимит 120 валиден: %v", err)
	}
	if err := ValidatePlaque(true, intPtr(0)); err == nil {
		t.Fatalf("нулевой лимит должен быть отклонён")
	}
	if err := ValidatePlaque(true, intPtr(MaxPlaqueChars+1)); err == nil {
		t.Fatalf("лимит выше максимума должен быть отклонён")
	}

	// Лимит без разрешённой таблички не имеет смысла.
	if err := ValidatePlaque(false, intPtr(120)); err == nil {
		t.Fatalf("лимит при запрещённой табличке должен быть отклонён")
	}
	if err := ValidatePlaque(false, nil); err != nil {
		t.Fatalf("запрещённая табличка без лимита допустима: %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("ссылка", ""); err != nil {
		t.Fatalf("пустая ссылка допустима: %v", err)
	}
	if err := ValidateURL("ссылка", "https://example.com/obj/1"); err != nil {
		t.Fatalf("https ссылка валидна: %v", err)
	}
	if err := ValidateURL("ссылка", "ftp://example.com"); err == nil {
		t.Fatalf("ftp ссылка должна быть отклонена")
	}
	if err := ValidateURL("ссылка", "not a url"); err == nil {
		t.Fatalf("мусорная строка должна быть отклонена")
	}
}

func TestValidateImageURLs(t *testing.T) {
	urls := make([]string, MaxImageCount+1)
	for i := range urls {
		urls[i] = "https://example.com/img.png"
	}
	if err := ValidateImageURLs(urls); err == nil {
		t.Fatalf("список длиннее %d должен быть отклонён", MaxImageCount)
	}
	if err := ValidateImageURLs(urls[:2]); err != nil {
		t.Fatalf("короткий список валиден: %v", err)
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int64) *int64 {
	return &v
}
