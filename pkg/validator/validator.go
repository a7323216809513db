package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"egov-portal/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Init створює спільний валідатор і реєструє його у gin
func Init() {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())

		// У повідомленнях використовуємо json-імена полів
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			engine.RegisterTagNameFunc(func(field reflect.StructField) string {
				return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			})
		}
	})
}

// Validate перевіряє структуру за тегами validate.
// Помилка обгортає models.ErrValidation і перелічує невалідні поля.
func Validate(s interface{}) error {
	Init()

	err := instance.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(fields, ", "))
}
