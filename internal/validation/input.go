package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinItemTitleLength = 3
	MaxItemTitleLength = 200
	MaxItemDescriptionLength = 5000
	MaxCategoryLength = 50
	MaxLocationLength = 200
	MaxConditionsLength = 2000
	MinDurationDays = 1
	MaxDurationDays = 365
	MaxRequestMessageLength = 2000
	MinMessageLength = 1
	MaxMessageLength = 5000
	MaxReviewCommentLength = 2000
	MaxReportReasonLength = 200
	MaxReportDescriptionLength = 2000
	MaxImagesPerItem = 10
)

// ValidateLength проверяет длину строки.
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

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

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

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
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

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	// Проверка длины
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Проверка на допустимые символы (только буквы, цифры и подчеркивание)
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	// Проверка, что не начинается с цифры
	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	// Проверка длины
	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	// Проверка на недопустимые символы (только буквы, цифры, пробелы и некоторые спецсимволы)
	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateItemTitle проверяет название вещи.
func ValidateItemTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название вещи обязательно")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("название вещи", title, MinItemTitleLength, MaxItemTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateItemDescription проверяет описание вещи.
func ValidateItemDescription(description string) error {
	description = strings.TrimSpace(description)

	if err := ValidateLength("описание вещи", description, 0, MaxItemDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateCategory проверяет категорию вещи.
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)

	if err := ValidateLength("категория", category, 0, MaxCategoryLength); err != nil {
		return err
	}

	return nil
}

// ValidateLocation проверяет место передачи или возврата.
func ValidateLocation(location string) error {
	location = strings.TrimSpace(location)

	if err := ValidateLength("место передачи", location, 0, MaxLocationLength); err != nil {
		return err
	}

	return nil
}

// ValidateConditions проверяет условия одалживания.
func ValidateConditions(conditions *string) error {
	if conditions != nil && *conditions != "" {
		cond := strings.TrimSpace(*conditions)
		if err := ValidateLength("условия одалживания", cond, 0, MaxConditionsLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDuration проверяет срок одалживания.
// При unlimited срок не задаётся, иначе duration_days обязателен.
func ValidateDuration(unlimited bool, durationDays *int) error {
	if unlimited {
		if durationDays != nil {
			return fmt.Errorf("бессрочное одалживание не может иметь срок в днях")
		}
		return nil
	}

	if durationDays == nil {
		return fmt.Errorf("срок одалживания обязателен")
	}
	if *durationDays < MinDurationDays || *durationDays > MaxDurationDays {
		return fmt.Errorf("срок одалживания должен быть от %d до %d дней", MinDurationDays, MaxDurationDays)
	}

	return nil
}

// ValidateRequestMessage проверяет сообщение в заявке.
func ValidateRequestMessage(message string) error {
	message = strings.TrimSpace(message)

	if err := ValidateLength("сообщение заявки", message, 0, MaxRequestMessageLength); err != nil {
		return err
	}

	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	content = strings.TrimSpace(content)

	if err := ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength); err != nil {
		return err
	}

	return nil
}

// ValidateRating проверяет оценку в отзыве.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("рейтинг должен быть от 1 до 5")
	}
	return nil
}

// ValidateReviewComment проверяет комментарий отзыва.
func ValidateReviewComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий отзыва", c, 0, MaxReviewCommentLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReportReason проверяет причину жалобы.
func ValidateReportReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина жалобы обязательна")
	}

	if err := ValidateLength("причина жалобы", reason, 0, MaxReportReasonLength); err != nil {
		return err
	}

	return nil
}

// ValidateReportDescription проверяет описание жалобы.
func ValidateReportDescription(description *string) error {
	if description != nil && *description != "" {
		d := strings.TrimSpace(*description)
		if err := ValidateLength("описание жалобы", d, 0, MaxReportDescriptionLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateImageCount проверяет количество изображений вещи.
func ValidateImageCount(count int) error {
	if count > MaxImagesPerItem {
		return fmt.Errorf("у вещи не может быть больше %d изображений", MaxImagesPerItem)
	}
	return nil
}
