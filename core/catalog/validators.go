package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/learnhub/core"
)

var (
	subjectTypeTag  = "subjecttype"
	subjectTypeText = "invalid subject type"
)

// InitValidators registers catalog-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTypeTag, subjectTypeValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTypeTag, subjectTypeText)
}

// subjectTypeValidation checks that the provided type is one of SubjectTypes.
func subjectTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, typ := range SubjectTypes {
		if val == typ {
			return true
		}
	}
	return false
}
