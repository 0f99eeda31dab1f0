package validator

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"ria-board/src/domain"
)

// CustomValidator は拡張バリデーション機能を提供
type CustomValidator struct {
	validator  *validator.Validate
	tagPattern *regexp.Regexp
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	cv := &CustomValidator{
		validator:  v,
		tagPattern: regexp.MustCompile(`^[a-zA-Z0-9_\-\s]+$`),
	}

	// カスタムバリデーションルールを登録
	RegisterValidations(v)

	return cv
}

// RegisterValidations installs the board's custom validation rules into the
// given validator instance. It is also used to extend Gin's binding engine
// so request DTOs can use the rules in binding tags.
func RegisterValidations(v *validator.Validate) {
	v.RegisterValidation("board_category", validateBoardCategory)
	v.RegisterValidation("idea_stage", validateIdeaStage)
	v.RegisterValidation("idea_type", validateIdeaType)
	v.RegisterValidation("todo_priority", validateTodoPriority)
	v.RegisterValidation("hopper_status", validateHopperStatus)
	v.RegisterValidation("checklist_status", validateChecklistStatus)
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		var validationErrors []ValidationError

		for _, err := range err.(validator.ValidationErrors) {
			ve := ValidationError{
				Field: err.Field(),
				Tag:   err.Tag(),
				Value: err.Value(),
			}

			// カスタムエラーメッセージを生成
			ve.Message = cv.generateErrorMessage(err)
			validationErrors = append(validationErrors, ve)
		}

		return ValidationErrors{Errors: validationErrors}
	}
	return nil
}

// SanitizeInput sanitizes input data to prevent XSS and other attacks
func (cv *CustomValidator) SanitizeInput(input string) string {
	// HTMLエスケープ
	sanitized := html.EscapeString(input)

	// 前後の空白を除去
	sanitized = strings.TrimSpace(sanitized)

	return sanitized
}

// SanitizeTags sanitizes and normalizes tags
func (cv *CustomValidator) SanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(tags))

	for _, tag := range tags {
		// サニタイズ
		sanitized := cv.SanitizeInput(tag)

		// 長さチェック
		if utf8.RuneCountInString(sanitized) > 30 {
			continue // 長すぎるタグは除外
		}

		// 重複チェック
		if sanitized != "" && !seen[sanitized] && cv.tagPattern.MatchString(sanitized) {
			seen[sanitized] = true
			result = append(result, sanitized)
		}
	}

	return result
}

// カスタムバリデーション関数

func validateBoardCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 任意フィールド
	}
	return domain.Category(value).IsValid()
}

func validateIdeaStage(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.Stage(value).IsValid()
}

func validateIdeaType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.IdeaType(value).IsValid()
}

func validateTodoPriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.Priority(value).IsValid()
}

func validateHopperStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.HopperStatus(value).IsValid()
}

func validateChecklistStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return domain.ChecklistStatus(value).IsValid()
}

// generateErrorMessage generates user-friendly error messages
func (cv *CustomValidator) generateErrorMessage(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	value := err.Value()

	switch tag {
	case "required":
		return fmt.Sprintf("%s は必須項目です", field)
	case "max":
		return fmt.Sprintf("%s は %s 文字以下で入力してください", field, err.Param())
	case "min":
		return fmt.Sprintf("%s は %s 文字以上で入力してください", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s は有効な値を選択してください (許可された値: %s)", field, err.Param())
	case "board_category":
		return fmt.Sprintf("%s は有効なカテゴリーではありません", field)
	case "idea_stage":
		return fmt.Sprintf("%s は有効なステージではありません", field)
	case "idea_type":
		return fmt.Sprintf("%s は有効なカードタイプではありません", field)
	case "todo_priority":
		return fmt.Sprintf("%s は有効な優先度ではありません", field)
	case "hopper_status":
		return fmt.Sprintf("%s は有効なステータスではありません", field)
	case "checklist_status":
		return fmt.Sprintf("%s は有効なステータスではありません", field)
	default:
		return fmt.Sprintf("%s が無効です (値: %v)", field, value)
	}
}
