package errors

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// TranslateValidation 把请求体结构校验错误转换为AppError。
// 第一条字段错误进Message便于直接展示，全部字段错误进Details。
func TranslateValidation(err error) *AppError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return NewValidationError("Invalid request payload").WithCause(err)
	}

	details := make([]map[string]interface{}, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, map[string]interface{}{
			"field":   fieldError.Field(),
			"tag":     fieldError.Tag(),
			"message": validationMessage(fieldError),
		})
	}

	return NewValidationError(validationMessage(fieldErrors[0])).
		WithDetails(map[string]interface{}{"errors": details})
}

// validationMessage 生成单个字段错误的可读消息
func validationMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()

	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fieldError.Param()
	case "oneof":
		return field + " must be one of: " + fieldError.Param()
	default:
		return field + " is invalid"
	}
}
