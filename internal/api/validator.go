package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator はEcho用のカスタムバリデーター
// エラーメッセージにはクライアントが送ったJSONのキー名を使う
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
// 関数の失敗はすべて500で返すため、検証エラーも500にする
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return echo.NewHTTPError(http.StatusInternalServerError, describeFieldError(fieldErrs[0])).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing required parameter: " + fe.Field()
	case "min":
		return fmt.Sprintf("Invalid parameter: %s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Invalid parameter: %s (%s)", fe.Field(), fe.Tag())
	}
}
