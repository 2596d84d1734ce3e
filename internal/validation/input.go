package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxNoteLength        = 2000
	MaxLocationLength    = 300
	MaxTagLength         = 100
	MaxURLLength         = 500
	MaxImageCount        = 10
	MinPrice             = 0.0
	MaxPrice             = 1000000.0
	MinPlaqueChars       = 1
	MaxPlaqueChars       = 1000
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateName проверяет имя или фамилию.
func ValidateName(fieldName, value string) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), MinNameLength, MaxNameLength)
}

// ValidateURL проверяет внешнюю ссылку (booking_url, share_url, map_url).
func ValidateURL(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := ValidateLength(fieldName, value, 0, MaxURLLength); err != nil {
		return err
	}

	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%s должен быть валидным http(s) адресом", fieldName)
	}
	return nil
}

// ValidateLatitude проверяет широту.
func ValidateLatitude(value *float64) error {
	if value == nil {
		return nil
	}
	if *value < -90 || *value > 90 {
		return fmt.Errorf("широта должна быть в диапазоне от -90 до 90")
	}
	return nil
}

// ValidateLongitude проверяет долготу.
func ValidateLongitude(value *float64) error {
	if value == nil {
		return nil
	}
	if *value < -180 || *value > 180 {
		return fmt.Errorf("долгота должна быть в диапазоне от -180 до 180")
	}
	return nil
}

// ValidatePrice проверяет цену спонсорства.
func ValidatePrice(value *float64) error {
	if value == nil {
		return nil
	}
	if *value < MinPrice || *value > MaxPrice {
		return fmt.Errorf("цена должна быть в диапазоне от %.0f до %.0f", MinPrice, MaxPrice)
	}
	return nil
}

// ValidatePlaque проверяет ограничения таблички: лимит символов имеет смысл
// только когда табличка разрешена.
func ValidatePlaque(allowed bool, maxChars *int64) error {
	if !allowed {
		if maxChars != nil {
			return fmt.Errorf("лимит символов таблички задаётся только при разрешённой табличке")
		}
		return nil
	}
	if maxChars != nil && (*maxChars < MinPlaqueChars || *maxChars > MaxPlaqueChars) {
		return fmt.Errorf("лимит символов таблички должен быть от %d до %d", MinPlaqueChars, MaxPlaqueChars)
	}
	return nil
}

// ValidateImageURLs проверяет список ссылок на изображения.
func ValidateImageURLs(urls []string) error {
	if len(urls) > MaxImageCount {
		return fmt.Errorf("нельзя прикрепить более %d изображений", MaxImageCount)
	}
	for _, u := range urls {
		if err := ValidateURL("ссылка на изображение", u); err != nil {
			return err
		}
	}
	return nil
}
